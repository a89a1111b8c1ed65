package ai

import (
	"fmt"

	"github.com/spf13/viper"
)

// ConfigFromViper resolves the provider settings for profile, falling back to
// ai.default_provider and then to the first configured provider.
//
//	ai:
//	  default_provider: openai
//	  providers:
//	    openai:
//	      api_key_env: OPENAI_API_KEY
//	      model: gpt-4o-mini
func ConfigFromViper(v *viper.Viper, profile string) Config {
	if profile == "" {
		profile = findLLMCallProfile(v)
	}
	if profile == "" {
		return Config{}
	}

	key := func(field string) string {
		return fmt.Sprintf("ai.providers.%s.%s", profile, field)
	}
	apiKey := v.GetString(key("api_key"))
	if apiKey == "" {
		apiKey = v.GetString(key("api_key_env"))
	}
	provider := v.GetString(key("provider"))
	if provider == "" {
		provider = profile
	}
	return Config{
		Provider: provider,
		APIKey:   apiKey,
		Model:    v.GetString(key("model")),
		BaseURL:  v.GetString(key("base_url")),
		Debug:    v.GetBool("debug"),
	}
}

func findLLMCallProfile(v *viper.Viper) string {
	if p := v.GetString("ai.default_provider"); p != "" {
		return p
	}
	for name := range v.GetStringMap("ai.providers") {
		return name
	}
	return ""
}
