package respond

import (
	"hash/fnv"
	"strings"
)

// Toner rewrites a plain template into a conversational reply.
type Toner interface {
	Wrap(text, intent string) string
}

var conversationalOpeners = []string{
	"Here's", "Here is", "Sure", "Of course", "Happy to help", "Good question",
	"No problem", "Got it", "Absolutely",
}

var wrapOpeners = []string{
	"Sure! ",
	"Happy to help. ",
	"Of course. ",
	"Good question. ",
}

// StartsConversational reports whether text already opens like a reply.
func StartsConversational(text string) bool {
	lower := strings.ToLower(strings.TrimSpace(text))
	for _, opener := range conversationalOpeners {
		if strings.HasPrefix(lower, strings.ToLower(opener)) {
			return true
		}
	}
	return false
}

// OpenerToner prefixes a stable opener chosen from the intent name, so the
// same intent always reads the same way.
type OpenerToner struct{}

func (OpenerToner) Wrap(text, intent string) string {
	if StartsConversational(text) {
		return text
	}
	h := fnv.New32a()
	h.Write([]byte(intent))
	return wrapOpeners[h.Sum32()%uint32(len(wrapOpeners))] + text
}
