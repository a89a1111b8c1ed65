package intent

import "github.com/bgdnvk/hrassist/internal/agent/model"

// Matcher runs the anchor, confirmation and classifier stages in order and
// returns the first stage that produces a result.
type Matcher struct {
	anchors    []Anchor
	classifier *Classifier
}

func NewMatcher() *Matcher {
	return NewMatcherWithTables(DefaultAnchors, DefaultDefinitions)
}

func NewMatcherWithTables(anchors []Anchor, definitions []Definition) *Matcher {
	return &Matcher{
		anchors:    anchors,
		classifier: NewClassifier(definitions),
	}
}

func (m *Matcher) Match(fs model.FeatureSet, conv model.Conversation) model.IntentMatch {
	if match, ok := MatchAnchor(fs.Q, m.anchors); ok {
		return match
	}
	if match, ok := Confirm(fs.Q, conv); ok {
		return match
	}
	return m.classifier.Classify(fs)
}

// Scores exposes the raw classifier table for diagnostics.
func (m *Matcher) Scores(fs model.FeatureSet) []Score {
	return m.classifier.Scores(fs)
}
