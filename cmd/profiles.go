package cmd

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bgdnvk/hrassist/internal/ai"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List configured language model providers",
	Long:  `List the providers configured under ai.providers and show which one answers free-form questions.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		listProfiles(cmd.OutOrStdout(), viper.GetViper())
		return nil
	},
}

func listProfiles(out io.Writer, v *viper.Viper) {
	profiles := v.GetStringMap("ai.providers")
	if len(profiles) == 0 {
		fmt.Fprintln(out, "No AI providers configured. Answers come from templates, policies and learned responses.")
		return
	}

	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)

	active := ai.ConfigFromViper(v, v.GetString("ai.default_provider"))
	state := "disabled"
	if v.GetBool("ai.enabled") {
		state = "enabled"
	}
	fmt.Fprintf(out, "AI providers (%s):\n\n", state)

	for _, name := range names {
		cfg := ai.ConfigFromViper(v, name)
		marker := ""
		if name == v.GetString("ai.default_provider") || (v.GetString("ai.default_provider") == "" && cfg == active) {
			marker = " (default)"
		}

		model := cfg.Model
		if model == "" {
			model = "provider default"
		}
		fmt.Fprintf(out, "  %s%s\n", name, marker)
		fmt.Fprintf(out, "    Provider: %s\n", cfg.Provider)
		fmt.Fprintf(out, "    Model: %s\n", model)
		if cfg.BaseURL != "" {
			fmt.Fprintf(out, "    Base URL: %s\n", cfg.BaseURL)
		}
		fmt.Fprintln(out)
	}
}

func init() {
	rootCmd.AddCommand(profilesCmd)
}
