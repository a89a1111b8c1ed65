// Package model defines shared data structures used across the assistant engine.
package model

import "time"

// MaxHistory bounds the per-user conversation history.
const MaxHistory = 7

// GeneralIntent is the catch-all intent used when nothing else fits.
const GeneralIntent = "general"

type Role string

const (
	RoleEmployee   Role = "employee"
	RoleManagement Role = "management"
)

type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// MatchSource records which stage produced an IntentMatch.
type MatchSource string

const (
	SourceAnchor       MatchSource = "anchor"
	SourceConfirmation MatchSource = "confirmation"
	SourceClassifier   MatchSource = "classifier"
	SourceFallback     MatchSource = "fallback"
)

// Tier is the confidence band that drives the dialog gate.
type Tier string

const (
	TierLow    Tier = "low"
	TierMedium Tier = "medium"
	TierHigh   Tier = "high"
)

// Route is the branch the dialog controller took for a turn.
type Route string

const (
	RouteEmpty     Route = "empty"
	RouteConfusion Route = "confusion"
	RouteClarify   Route = "clarify"
	RouteConfirm   Route = "confirm"
	RouteAnswer    Route = "answer"
	RouteFallback  Route = "fallback"
)

// FeatureSet is the lexical view of one question.
type FeatureSet struct {
	Q           string    `json:"q"`
	Words       []string  `json:"words"`
	Verbs       []string  `json:"verbs"`
	Nouns       []string  `json:"nouns"`
	Adjectives  []string  `json:"adjectives"`
	Dates       []string  `json:"dates"`
	Numbers     []string  `json:"numbers"`
	Entities    []string  `json:"entities"`
	IsQuestion  bool      `json:"isQuestion"`
	HasUrgency  bool      `json:"hasUrgency"`
	HasNegation bool      `json:"hasNegation"`
	Sentiment   Sentiment `json:"sentiment"`
	WordCount   int       `json:"wordCount"`
}

type IntentMatch struct {
	Intent             string      `json:"intent"`
	Subtype            string      `json:"subtype,omitempty"`
	Confidence         float64     `json:"confidence"`
	Source             MatchSource `json:"source"`
	IsConfirmation     bool        `json:"isConfirmation,omitempty"`
	NeedsClarification bool        `json:"needsClarification,omitempty"`
}

// TierOf maps a confidence value to its dialog tier.
func TierOf(confidence float64) Tier {
	switch {
	case confidence < 0.3:
		return TierLow
	case confidence < 0.6:
		return TierMedium
	default:
		return TierHigh
	}
}

type HistoryEntry struct {
	Intent     string    `json:"intent"`
	Subtype    string    `json:"subtype,omitempty"`
	Confidence float64   `json:"confidence"`
	UserSaid   string    `json:"userSaid"`
	Timestamp  time.Time `json:"timestamp"`
}

// Conversation is the short-term state kept per user between turns.
type Conversation struct {
	UserID              string         `json:"userId"`
	LastIntent          *IntentMatch   `json:"lastIntent,omitempty"`
	PendingConfirmation bool           `json:"pendingConfirmation"`
	LastTopic           string         `json:"lastTopic,omitempty"`
	LastUserMessage     string         `json:"lastUserMessage,omitempty"`
	LastBotMessage      string         `json:"lastBotMessage,omitempty"`
	Sentiment           Sentiment      `json:"sentiment,omitempty"`
	History             []HistoryEntry `json:"history"`
	LastUpdated         time.Time      `json:"lastUpdated"`
}

// LearningRecord is one persisted question/answer pair.
type LearningRecord struct {
	ID              int64     `json:"id"`
	Question        string    `json:"question"`
	Response        string    `json:"response"`
	UserID          string    `json:"userId,omitempty"`
	IntentCategory  string    `json:"intentCategory"`
	IntentLabels    []string  `json:"intentLabels"`
	ConfidenceScore float64   `json:"confidenceScore"`
	Frequency       int       `json:"frequency"`
	CreatedAt       time.Time `json:"createdAt"`
	LastAsked       time.Time `json:"lastAsked"`
}

type SimilarRecord struct {
	Record     LearningRecord `json:"record"`
	Similarity float64        `json:"similarity"`
}

// PolicyDocument is a resolved policy file ready to quote.
type PolicyDocument struct {
	Topic   string `json:"topic"`
	Path    string `json:"path"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Link    string `json:"link,omitempty"`
}

// AnswerPayload is the text returned to the user plus an optional source link.
type AnswerPayload struct {
	Text string  `json:"text"`
	Link *string `json:"link,omitempty"`
}

// TurnEvent is the audit record emitted after every answered turn.
type TurnEvent struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId,omitempty"`
	Role       Role      `json:"role"`
	Question   string    `json:"question"`
	Intent     string    `json:"intent"`
	Subtype    string    `json:"subtype,omitempty"`
	Confidence float64   `json:"confidence"`
	Tier       Tier      `json:"tier"`
	Route      Route     `json:"route"`
	Learned    bool      `json:"learned"`
	Urgent     bool      `json:"urgent"`
	Timestamp  time.Time `json:"timestamp"`
}
