// Package intent resolves a question to an HR intent through anchor phrases,
// the yes/no confirmation follow-up and a weighted keyword classifier.
package intent

import (
	"strings"

	"github.com/bgdnvk/hrassist/internal/agent/model"
)

const (
	anchorConfidence     = 0.99
	navigationConfidence = 0.95
)

// MatchAnchor returns the first anchor whose phrase occurs in q.
func MatchAnchor(q string, anchors []Anchor) (model.IntentMatch, bool) {
	for _, anchor := range anchors {
		for _, phrase := range anchor.Phrases {
			if !strings.Contains(q, phrase) {
				continue
			}
			return anchorMatch(anchor.Intent), true
		}
	}
	return model.IntentMatch{}, false
}

func anchorMatch(name string) model.IntentMatch {
	switch {
	case name == checkinIntent || name == checkoutIntent:
		// checkout shares the checkin subtype; both land on the attendance screen.
		return model.IntentMatch{Intent: "attendance", Subtype: checkinIntent, Confidence: anchorConfidence, Source: model.SourceAnchor}
	case navigationIntents[name]:
		return model.IntentMatch{Intent: model.GeneralIntent, Subtype: name, Confidence: navigationConfidence, Source: model.SourceAnchor}
	default:
		return model.IntentMatch{Intent: name, Confidence: anchorConfidence, Source: model.SourceAnchor}
	}
}
