package intent

import (
	"math"
	"strings"

	"github.com/bgdnvk/hrassist/internal/agent/model"
	"github.com/bgdnvk/hrassist/internal/agent/semantic"
)

const (
	keywordHitFactor     = 0.8
	partialWordFactor    = 0.15
	shortWordPenalty     = 0.2
	keywordShare         = 0.7
	semanticShare        = 0.3
	subtypeBonus         = 0.25
	temporalBoost        = 0.05
	numericBoost         = 0.05
	shortWordMaxLen      = 3
	partialWordMinLength = 5
)

// Score is one intent's classifier result.
type Score struct {
	Intent  string  `json:"intent"`
	Subtype string  `json:"subtype,omitempty"`
	Value   float64 `json:"value"`
}

type Classifier struct {
	definitions []Definition
}

func NewClassifier(definitions []Definition) *Classifier {
	return &Classifier{definitions: definitions}
}

// Scores evaluates every definition in table order.
func (c *Classifier) Scores(fs model.FeatureSet) []Score {
	scores := make([]Score, 0, len(c.definitions))
	for _, def := range c.definitions {
		scores = append(scores, scoreDefinition(def, fs))
	}
	return scores
}

// Classify picks the strictly highest score. Ties keep the earlier intent and
// an all-zero table falls back to general with zero confidence.
func (c *Classifier) Classify(fs model.FeatureSet) model.IntentMatch {
	best := Score{Intent: model.GeneralIntent}
	for _, s := range c.Scores(fs) {
		if s.Value > best.Value {
			best = s
		}
	}
	if best.Value <= 0 {
		return model.IntentMatch{Intent: model.GeneralIntent, Source: model.SourceFallback}
	}
	return model.IntentMatch{
		Intent:     best.Intent,
		Subtype:    best.Subtype,
		Confidence: best.Value,
		Source:     model.SourceClassifier,
	}
}

func scoreDefinition(def Definition, fs model.FeatureSet) Score {
	q := fs.Q
	words := fs.Words

	var keywordScore, penalty float64
	for _, kw := range def.Keywords {
		if strings.Contains(q, kw) {
			keywordScore += def.Weight * keywordHitFactor
			continue
		}
		for _, w := range words {
			if !strings.Contains(kw, w) {
				continue
			}
			switch {
			case len(w) <= shortWordMaxLen:
				penalty += shortWordPenalty
			case len(w) >= partialWordMinLength:
				keywordScore += def.Weight * partialWordFactor
			}
		}
	}

	semanticScore := semantic.Jaccard(words, def.Keywords)
	value := math.Max(keywordScore*keywordShare+semanticScore*semanticShare-penalty, 0)

	score := Score{Intent: def.Intent}
	for _, group := range def.Subtypes {
		if !containsAny(q, group.Keywords) {
			continue
		}
		if score.Subtype == "" {
			score.Subtype = group.Name
		}
		value += subtypeBonus
	}

	switch {
	case (def.Intent == "leave" || def.Intent == "attendance") && len(fs.Dates) > 0:
		value += temporalBoost
	case def.Intent == "payslip" && len(fs.Numbers) > 0:
		value += numericBoost
	}

	score.Value = math.Min(value, 1.0)
	return score
}

func containsAny(q string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(q, kw) {
			return true
		}
	}
	return false
}
