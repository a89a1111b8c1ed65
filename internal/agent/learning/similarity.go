package learning

import (
	"github.com/bgdnvk/hrassist/internal/agent/model"
	"github.com/bgdnvk/hrassist/internal/agent/semantic"
)

const (
	nounShare = 0.4
	verbShare = 0.3
	wordShare = 0.3
)

// Synonyms maps a canonical HR term to the words that mean the same thing.
type Synonyms map[string][]string

var defaultSynonyms = Synonyms{
	"leave":      {"leaves", "vacation", "holiday", "off", "absence", "pto"},
	"salary":     {"pay", "wages", "payslip", "earnings", "compensation", "ctc"},
	"attendance": {"presence", "checkin", "punch", "timesheet"},
	"policy":     {"policies", "rule", "rules", "guideline", "guidelines", "handbook"},
	"document":   {"documents", "letter", "certificate", "form"},
	"balance":    {"remaining", "left", "available"},
	"apply":      {"request", "submit", "take", "book"},
	"show":       {"view", "see", "display", "get", "check"},
	"cancel":     {"withdraw", "revoke", "delete"},
	"manager":    {"supervisor", "lead", "boss"},
}

type synonymIndex map[string]string

func (s Synonyms) index() synonymIndex {
	idx := make(synonymIndex)
	for canonical, words := range s {
		idx[canonical] = canonical
		for _, w := range words {
			idx[w] = canonical
		}
	}
	return idx
}

// expand adds the canonical form of every word that has one.
func (idx synonymIndex) expand(words []string) []string {
	out := make([]string, 0, len(words)*2)
	for _, w := range words {
		out = append(out, w)
		if canonical, ok := idx[w]; ok && canonical != w {
			out = append(out, canonical)
		}
	}
	return out
}

// similarity blends synonym-expanded Jaccard overlap of nouns, verbs and raw
// words. A part empty on both sides carries no signal, so its share is spread
// over the remaining parts.
func (idx synonymIndex) similarity(a, b model.FeatureSet) float64 {
	parts := []struct {
		share float64
		a, b  []string
	}{
		{nounShare, a.Nouns, b.Nouns},
		{verbShare, a.Verbs, b.Verbs},
		{wordShare, a.Words, b.Words},
	}

	var score, total float64
	for _, p := range parts {
		if len(p.a) == 0 && len(p.b) == 0 {
			continue
		}
		score += p.share * semantic.Jaccard(idx.expand(p.a), idx.expand(p.b))
		total += p.share
	}
	if total == 0 {
		return 0
	}
	return score / total
}
