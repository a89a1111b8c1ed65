// Package semantic turns free-text HR questions into lexical feature sets.
package semantic

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/bgdnvk/hrassist/internal/agent/model"
)

var (
	punctuationPattern = regexp.MustCompile(`[?!,;:()\[\]{}"*]+|\.(?:\s|$)`)
	numberPattern      = regexp.MustCompile(`\b\d+(?:\.\d+)?\b`)
	emailPattern       = regexp.MustCompile(`[\w.+-]+@[\w-]+\.[\w.]+`)
	employeeIDPattern  = regexp.MustCompile(`\b[A-Z]{2,5}-?\d{2,}\b`)
	datePattern        = regexp.MustCompile(`\b(?:` + strings.Join([]string{
		`\d{4}-\d{2}-\d{2}`,
		`\d{1,2}[/-]\d{1,2}(?:[/-]\d{2,4})?`,
		`\d{1,2}(?:st|nd|rd|th)?\s+(?:` + monthNames + `|may)`,
		`(?:` + monthNames + `|may)\s+\d{1,2}(?:st|nd|rd|th)?`,
		`(?:` + monthNames + `)`,
		`(?:next|last|this|coming)\s+(?:week|month|year|` + weekdayNames + `)`,
		`today|tomorrow|yesterday|tonight|weekend`,
		`(?:` + weekdayNames + `)`,
	}, "|") + `)\b`)

	quoteFolder = strings.NewReplacer("’", "'", "‘", "'", "“", `"`, "”", `"`)
)

const (
	monthNames   = `january|february|march|april|june|july|august|september|october|november|december|jan|feb|mar|apr|jun|jul|aug|sept|sep|oct|nov|dec`
	weekdayNames = `monday|tuesday|wednesday|thursday|friday|saturday|sunday`
)

func NewAnalyzer() *Analyzer {
	return &Analyzer{
		Corrections:    cloneCorrections(defaultCorrections),
		Verbs:          cloneWordSet(defaultVerbs),
		Nouns:          cloneWordSet(defaultNouns),
		Adjectives:     cloneWordSet(defaultAdjectives),
		Stopwords:      cloneWordSet(defaultStopwords),
		QuestionWords:  cloneWordSet(defaultQuestionWords),
		NegationWords:  cloneWordSet(defaultNegationWords),
		PositiveWords:  cloneWordSet(defaultPositiveWords),
		NegativeWords:  cloneWordSet(defaultNegativeWords),
		UrgencyPhrases: clonePhrases(defaultUrgencyPhrases),
	}
}

// Normalize lowercases the question, strips sentence punctuation, collapses
// whitespace and then applies the misspelling table in order.
func (a *Analyzer) Normalize(question string) string {
	s := quoteFolder.Replace(norm.NFKC.String(question))
	s = cases.Lower(language.English).String(s)
	s = punctuationPattern.ReplaceAllString(s, " ")
	s = strings.Join(strings.Fields(s), " ")
	for _, c := range a.Corrections {
		s = strings.ReplaceAll(s, c.From, c.To)
	}
	return s
}

// Extract builds the FeatureSet for a question. It never fails; an empty
// question yields an empty, neutral feature set.
func (a *Analyzer) Extract(question string) model.FeatureSet {
	q := a.Normalize(question)
	words := strings.Fields(q)

	fs := model.FeatureSet{
		Q:          q,
		Words:      words,
		Verbs:      []string{},
		Nouns:      []string{},
		Adjectives: []string{},
		Dates:      []string{},
		Numbers:    []string{},
		Entities:   []string{},
		Sentiment:  model.SentimentNeutral,
		WordCount:  len(words),
	}
	if fs.Words == nil {
		fs.Words = []string{}
	}

	seen := make(map[string]bool)
	positive, negative := 0, 0
	for _, w := range words {
		token := strings.Trim(w, "'-/.")
		if token == "" {
			continue
		}
		if a.NegationWords.Has(token) {
			fs.HasNegation = true
		}
		if a.PositiveWords.Has(token) {
			positive++
		}
		if a.NegativeWords.Has(token) {
			negative++
		}
		if seen[token] {
			continue
		}
		seen[token] = true
		switch a.partOfSpeech(token) {
		case "verb":
			fs.Verbs = append(fs.Verbs, token)
		case "noun":
			fs.Nouns = append(fs.Nouns, token)
		case "adjective":
			fs.Adjectives = append(fs.Adjectives, token)
		}
	}

	if dates := datePattern.FindAllString(q, -1); dates != nil {
		fs.Dates = dates
	}
	if numbers := numberPattern.FindAllString(q, -1); numbers != nil {
		fs.Numbers = numbers
	}
	fs.Entities = extractEntities(question)

	fs.IsQuestion = strings.Contains(question, "?") || (len(words) > 0 && a.QuestionWords.Has(words[0]))
	for _, phrase := range a.UrgencyPhrases {
		if strings.Contains(q, phrase) {
			fs.HasUrgency = true
			break
		}
	}

	switch {
	case positive > negative:
		fs.Sentiment = model.SentimentPositive
	case negative > positive:
		fs.Sentiment = model.SentimentNegative
	}

	return fs
}

func (a *Analyzer) partOfSpeech(word string) string {
	switch {
	case a.Verbs.Has(word):
		return "verb"
	case a.Nouns.Has(word):
		return "noun"
	case a.Adjectives.Has(word):
		return "adjective"
	case a.Stopwords.Has(word), a.QuestionWords.Has(word), a.NegationWords.Has(word):
		return ""
	case isNumeric(word):
		return ""
	case len(word) > 4 && (strings.HasSuffix(word, "ing") || strings.HasSuffix(word, "ed")):
		return "verb"
	case hasAnySuffix(word, "ful", "ous", "ive", "able", "ible", "less"):
		return "adjective"
	case len(word) > 2:
		return "noun"
	}
	return ""
}

// extractEntities picks capitalised words that are not sentence openers, plus
// email addresses and employee-style identifiers, from the original text.
func extractEntities(question string) []string {
	entities := []string{}
	seen := make(map[string]bool)
	add := func(e string) {
		if e != "" && !seen[e] {
			seen[e] = true
			entities = append(entities, e)
		}
	}

	for _, m := range emailPattern.FindAllString(question, -1) {
		add(m)
	}
	for _, m := range employeeIDPattern.FindAllString(question, -1) {
		add(m)
	}

	sentenceStart := true
	for _, raw := range strings.Fields(question) {
		word := strings.TrimFunc(raw, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if word != "" && !sentenceStart && word != "I" && !strings.Contains(raw, "@") {
			if r := []rune(word)[0]; unicode.IsUpper(r) && !employeeIDPattern.MatchString(word) {
				add(word)
			}
		}
		sentenceStart = strings.ContainsAny(raw[len(raw)-1:], ".?!")
	}
	return entities
}

func isNumeric(word string) bool {
	for _, r := range word {
		if !unicode.IsDigit(r) && r != '.' {
			return false
		}
	}
	return word != ""
}

func hasAnySuffix(word string, suffixes ...string) bool {
	for _, s := range suffixes {
		if len(word) > len(s)+2 && strings.HasSuffix(word, s) {
			return true
		}
	}
	return false
}

// Jaccard returns |a∩b| / |a∪b| over the distinct members of a and b.
// Two empty inputs have similarity 0.
func Jaccard(a, b []string) float64 {
	setA := make(map[string]struct{}, len(a))
	for _, w := range a {
		setA[w] = struct{}{}
	}
	setB := make(map[string]struct{}, len(b))
	for _, w := range b {
		setB[w] = struct{}{}
	}
	if len(setA) == 0 && len(setB) == 0 {
		return 0
	}
	inter := 0
	for w := range setA {
		if _, ok := setB[w]; ok {
			inter++
		}
	}
	union := len(setA) + len(setB) - inter
	return float64(inter) / float64(union)
}
