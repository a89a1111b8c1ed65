package semantic

// WordSet is a lookup table of known lowercase words.
type WordSet map[string]struct{}

// Has reports whether word is in the set.
func (ws WordSet) Has(word string) bool {
	_, ok := ws[word]
	return ok
}

// Correction rewrites a known misspelling fragment. Corrections are applied
// as raw substring replacements in slice order, so a fragment can also hit
// the inside of an unrelated word.
type Correction struct {
	From string
	To   string
}

// Analyzer keeps the lexical resources used to turn a question into a FeatureSet.
type Analyzer struct {
	Corrections    []Correction
	Verbs          WordSet
	Nouns          WordSet
	Adjectives     WordSet
	Stopwords      WordSet
	QuestionWords  WordSet
	NegationWords  WordSet
	PositiveWords  WordSet
	NegativeWords  WordSet
	UrgencyPhrases []string
}
