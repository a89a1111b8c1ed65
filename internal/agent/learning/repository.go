// Package learning persists answered questions and retrieves previously
// answered ones that resemble a new question.
package learning

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/bgdnvk/hrassist/internal/agent/model"
	"github.com/bgdnvk/hrassist/internal/agent/semantic"
)

var ErrNotFound = errors.New("learning record not found")

const (
	candidateLimit    = 20
	minCandidateConf  = 0.7
	minCandidateFreq  = 3
	reinforceAbove    = 0.7
	reinforceStep     = 0.05
	returnAbove       = 0.3
	maxSimilarResults = 5
	recordColumns     = `id, question, response, user_id, intent_category, intent_labels, confidence_score, frequency, created_at, last_asked`
)

// Entry is one answered turn to record.
type Entry struct {
	Question   string
	Response   string
	UserID     string
	Intent     string
	Labels     []string
	Confidence float64
}

type Repository struct {
	db       *sql.DB
	dialect  Dialect
	analyzer *semantic.Analyzer
	synonyms synonymIndex
	retry    Retry
	logger   *slog.Logger
	now      func() time.Time
}

type Option func(*Repository)

func WithRetry(r Retry) Option {
	return func(repo *Repository) { repo.retry = r }
}

func WithLogger(l *slog.Logger) Option {
	return func(repo *Repository) { repo.logger = l }
}

func WithAnalyzer(a *semantic.Analyzer) Option {
	return func(repo *Repository) { repo.analyzer = a }
}

func WithSynonyms(s Synonyms) Option {
	return func(repo *Repository) { repo.synonyms = s.index() }
}

func NewRepository(db *sql.DB, dialect Dialect, opts ...Option) *Repository {
	repo := &Repository{
		db:       db,
		dialect:  dialect,
		analyzer: semantic.NewAnalyzer(),
		synonyms: defaultSynonyms.index(),
		retry:    DefaultRetry(),
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// Migrate creates the learning table and its lookup index when missing.
func (r *Repository) Migrate(ctx context.Context) error {
	for _, stmt := range r.dialect.schema() {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate learning store: %w", err)
		}
	}
	return nil
}

// NormalizeQuestion is the uniqueness key: trimmed, lowercased, single-spaced.
func NormalizeQuestion(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(q)), " ")
}

// Upsert inserts a new record or bumps the frequency of the existing one and
// refreshes its answer, intent, labels, confidence and last-asked time.
func (r *Repository) Upsert(ctx context.Context, e Entry) error {
	question := NormalizeQuestion(e.Question)
	if question == "" {
		return errors.New("empty question")
	}
	labels, err := json.Marshal(nonNil(e.Labels))
	if err != nil {
		return fmt.Errorf("encode labels: %w", err)
	}
	intent := e.Intent
	if intent == "" {
		intent = model.GeneralIntent
	}

	return r.retry.Do(ctx, func(ctx context.Context) error {
		now := r.now().UnixMilli()

		var id int64
		err := r.db.QueryRowContext(ctx,
			r.dialect.rebind(`SELECT id FROM chatbot_learning WHERE question = ?`),
			question,
		).Scan(&id)

		switch {
		case errors.Is(err, sql.ErrNoRows):
			_, err = r.db.ExecContext(ctx, r.dialect.rebind(`
INSERT INTO chatbot_learning
    (question, response, user_id, intent_category, intent_labels, confidence_score, frequency, created_at, last_asked)
VALUES (?, ?, ?, ?, ?, ?, 1, ?, ?)`),
				question, e.Response, nullString(e.UserID), intent, string(labels), e.Confidence, now, now,
			)
		case err == nil:
			_, err = r.db.ExecContext(ctx, r.dialect.rebind(`
UPDATE chatbot_learning
SET frequency = frequency + 1, response = ?, intent_category = ?, intent_labels = ?,
    confidence_score = ?, last_asked = ?
WHERE id = ?`),
				e.Response, intent, string(labels), e.Confidence, now, id,
			)
		}
		if err != nil {
			return fmt.Errorf("upsert learning record: %w", err)
		}
		return nil
	})
}

// Get returns the record stored for question.
func (r *Repository) Get(ctx context.Context, question string) (model.LearningRecord, error) {
	var rec model.LearningRecord
	err := r.retry.Do(ctx, func(ctx context.Context) error {
		row := r.db.QueryRowContext(ctx,
			r.dialect.rebind(`SELECT `+recordColumns+` FROM chatbot_learning WHERE question = ?`),
			NormalizeQuestion(question),
		)
		var err error
		rec, err = scanRecord(row)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return err
	})
	if err != nil {
		return model.LearningRecord{}, err
	}
	if rec.ID == 0 {
		return model.LearningRecord{}, ErrNotFound
	}
	return rec, nil
}

// FindSimilar scores the most established answers for intent against the
// live question. Strong matches are reinforced in place; matches above the
// floor are returned best first.
func (r *Repository) FindSimilar(ctx context.Context, intent string, live model.FeatureSet) ([]model.SimilarRecord, error) {
	var candidates []model.LearningRecord
	err := r.retry.Do(ctx, func(ctx context.Context) error {
		rows, err := r.db.QueryContext(ctx, r.dialect.rebind(`
SELECT `+recordColumns+`
FROM chatbot_learning
WHERE intent_category = ? AND confidence_score >= ? AND frequency >= ?
ORDER BY frequency DESC, confidence_score DESC
LIMIT ?`),
			intent, minCandidateConf, minCandidateFreq, candidateLimit,
		)
		if err != nil {
			return fmt.Errorf("query candidates: %w", err)
		}
		defer rows.Close()

		candidates = candidates[:0]
		for rows.Next() {
			rec, err := scanRecord(rows)
			if err != nil {
				return fmt.Errorf("scan candidate: %w", err)
			}
			candidates = append(candidates, rec)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	results := make([]model.SimilarRecord, 0, len(candidates))
	for _, rec := range candidates {
		score := r.synonyms.similarity(live, r.analyzer.Extract(rec.Question))
		if score > reinforceAbove {
			rec.ConfidenceScore = r.reinforce(ctx, rec)
		}
		if score > returnAbove {
			results = append(results, model.SimilarRecord{Record: rec, Similarity: score})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
	if len(results) > maxSimilarResults {
		results = results[:maxSimilarResults]
	}
	return results, nil
}

// reinforce raises a record's confidence by one step, capped at 1. Failures
// are logged and leave the in-memory value unchanged.
func (r *Repository) reinforce(ctx context.Context, rec model.LearningRecord) float64 {
	next := math.Min(rec.ConfidenceScore+reinforceStep, 1.0)
	err := r.retry.Do(ctx, func(ctx context.Context) error {
		_, err := r.db.ExecContext(ctx,
			r.dialect.rebind(`UPDATE chatbot_learning SET confidence_score = ? WHERE id = ?`),
			next, rec.ID,
		)
		return err
	})
	if err != nil {
		r.logger.Warn("reinforce learning record failed", "id", rec.ID, "error", err)
		return rec.ConfidenceScore
	}
	return next
}

// Top lists the most frequently asked questions.
func (r *Repository) Top(ctx context.Context, limit int) ([]model.LearningRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	var records []model.LearningRecord
	err := r.retry.Do(ctx, func(ctx context.Context) error {
		rows, err := r.db.QueryContext(ctx, r.dialect.rebind(`
SELECT `+recordColumns+`
FROM chatbot_learning
ORDER BY frequency DESC, last_asked DESC
LIMIT ?`), limit)
		if err != nil {
			return fmt.Errorf("query top questions: %w", err)
		}
		defer rows.Close()

		records = records[:0]
		for rows.Next() {
			rec, err := scanRecord(rows)
			if err != nil {
				return err
			}
			records = append(records, rec)
		}
		return rows.Err()
	})
	return records, err
}

// Forget deletes the record for question.
func (r *Repository) Forget(ctx context.Context, question string) error {
	var affected int64
	err := r.retry.Do(ctx, func(ctx context.Context) error {
		res, err := r.db.ExecContext(ctx,
			r.dialect.rebind(`DELETE FROM chatbot_learning WHERE question = ?`),
			NormalizeQuestion(question),
		)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return fmt.Errorf("forget learning record: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (model.LearningRecord, error) {
	var (
		rec       model.LearningRecord
		userID    sql.NullString
		labels    string
		createdAt int64
		lastAsked int64
	)
	if err := s.Scan(
		&rec.ID, &rec.Question, &rec.Response, &userID, &rec.IntentCategory,
		&labels, &rec.ConfidenceScore, &rec.Frequency, &createdAt, &lastAsked,
	); err != nil {
		return model.LearningRecord{}, err
	}
	rec.UserID = userID.String
	rec.CreatedAt = time.UnixMilli(createdAt).UTC()
	rec.LastAsked = time.UnixMilli(lastAsked).UTC()
	if err := json.Unmarshal([]byte(labels), &rec.IntentLabels); err != nil || rec.IntentLabels == nil {
		rec.IntentLabels = []string{}
	}
	return rec, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
