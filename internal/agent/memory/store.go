// Package memory keeps short-term conversation state per user.
package memory

import (
	"context"
	"time"

	"github.com/bgdnvk/hrassist/internal/agent/model"
)

// DefaultTTL is how long a conversation survives without activity.
const DefaultTTL = 5 * time.Minute

// Store persists one Conversation per user. Get reports false for unknown or
// expired users; Update merges a Patch and creates the entry on first use.
type Store interface {
	Get(ctx context.Context, userID string) (model.Conversation, bool, error)
	Update(ctx context.Context, userID string, patch Patch) (model.Conversation, error)
	Reset(ctx context.Context, userID string) error
}

// Patch carries the fields to change. Nil fields are left untouched.
type Patch struct {
	LastIntent          *model.IntentMatch
	PendingConfirmation *bool
	LastTopic           *string
	LastUserMessage     *string
	LastBotMessage      *string
	Sentiment           *model.Sentiment
}

// Apply merges p into conv. A history entry is appended only when the patch
// carries a LastIntent, and history is trimmed to model.MaxHistory.
func Apply(conv model.Conversation, p Patch, now time.Time) model.Conversation {
	if p.LastIntent != nil {
		intent := *p.LastIntent
		conv.LastIntent = &intent

		said := conv.LastUserMessage
		if p.LastUserMessage != nil {
			said = *p.LastUserMessage
		}
		conv.History = append(conv.History, model.HistoryEntry{
			Intent:     intent.Intent,
			Subtype:    intent.Subtype,
			Confidence: intent.Confidence,
			UserSaid:   said,
			Timestamp:  now,
		})
		if len(conv.History) > model.MaxHistory {
			conv.History = append([]model.HistoryEntry(nil), conv.History[len(conv.History)-model.MaxHistory:]...)
		}
	}
	if p.PendingConfirmation != nil {
		conv.PendingConfirmation = *p.PendingConfirmation
	}
	if p.LastTopic != nil {
		conv.LastTopic = *p.LastTopic
	}
	if p.LastUserMessage != nil {
		conv.LastUserMessage = *p.LastUserMessage
	}
	if p.LastBotMessage != nil {
		conv.LastBotMessage = *p.LastBotMessage
	}
	if p.Sentiment != nil {
		conv.Sentiment = *p.Sentiment
	}
	if conv.History == nil {
		conv.History = []model.HistoryEntry{}
	}
	conv.LastUpdated = now
	return conv
}

func expired(conv model.Conversation, ttl time.Duration, now time.Time) bool {
	return ttl > 0 && now.Sub(conv.LastUpdated) >= ttl
}
