package intent

import (
	"strings"

	"github.com/bgdnvk/hrassist/internal/agent/model"
)

const (
	confirmedConfidence = 0.95
	declinedConfidence  = 0.9
)

// Confirm resolves a yes/no reply to a pending confirmation prompt. "yes" is
// tested before "no", and both match anywhere in the text.
func Confirm(q string, conv model.Conversation) (model.IntentMatch, bool) {
	if !conv.PendingConfirmation || conv.LastIntent == nil {
		return model.IntentMatch{}, false
	}

	switch {
	case strings.Contains(q, "yes"):
		match := *conv.LastIntent
		match.Confidence = confirmedConfidence
		match.Source = model.SourceConfirmation
		match.IsConfirmation = true
		match.NeedsClarification = false
		return match, true
	case strings.Contains(q, "no"):
		return model.IntentMatch{
			Intent:             model.GeneralIntent,
			Confidence:         declinedConfidence,
			Source:             model.SourceConfirmation,
			IsConfirmation:     true,
			NeedsClarification: true,
		}, true
	}
	return model.IntentMatch{}, false
}
