package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bgdnvk/hrassist/internal/agent/intent"
	"github.com/bgdnvk/hrassist/internal/agent/learning"
	"github.com/bgdnvk/hrassist/internal/agent/memory"
	"github.com/bgdnvk/hrassist/internal/agent/model"
	"github.com/bgdnvk/hrassist/internal/agent/respond"
	"github.com/bgdnvk/hrassist/internal/agent/semantic"
)

type (
	FeatureSet    = model.FeatureSet
	IntentMatch   = model.IntentMatch
	AnswerPayload = model.AnswerPayload
	Conversation  = model.Conversation
)

const (
	policyExcerptChars  = 800
	learnedResponseRune = 1000
	learnedThreshold    = 0.85
)

// confusionPhrases signal that the user cannot find something in the UI.
var confusionPhrases = []string{
	"don't see", "dont see", "can't find", "cannot find", "can't see",
	"missing", "where is", "not showing", "not visible", "disappeared",
}

// LearningStore remembers answered questions and finds similar past ones.
type LearningStore interface {
	Upsert(ctx context.Context, e learning.Entry) error
	FindSimilar(ctx context.Context, intent string, live model.FeatureSet) ([]model.SimilarRecord, error)
}

type PolicyLookup interface {
	Lookup(ctx context.Context, subtype, question string) (model.PolicyDocument, error)
}

type LLM interface {
	Answer(ctx context.Context, question, contextText string) (string, error)
}

// Records returns a plain-text summary of an employee's own HR data.
type Records interface {
	Summary(ctx context.Context, empID string) (string, error)
}

type TurnPublisher interface {
	PublishTurn(ctx context.Context, ev model.TurnEvent) error
}

type Observer interface {
	ObserveTurn(source, tier string, confidence float64)
	LearningWrite(ok bool)
	CollaboratorFailure(name string)
}

type nopObserver struct{}

func (nopObserver) ObserveTurn(string, string, float64) {}

func (nopObserver) LearningWrite(bool) {}

func (nopObserver) CollaboratorFailure(string) {}

// Request is one inbound question. UserID is empty for anonymous callers,
// who get no conversation state.
type Request struct {
	Question string
	UserID   string
	Role     string
}

// Result is everything the engine decided for a turn.
type Result struct {
	Answer     AnswerPayload
	Match      IntentMatch
	Tier       model.Tier
	Route      model.Route
	Labels     []string
	Learned    bool
	Similarity float64
	Features   FeatureSet
	Thoughts   []Thought
}

// Engine is the confidence-gated dialog controller.
type Engine struct {
	analyzer  *semantic.Analyzer
	matcher   *intent.Matcher
	composer  *respond.Composer
	sessions  memory.Store
	learning  LearningStore
	policy    PolicyLookup
	llm       LLM
	records   Records
	publisher TurnPublisher
	observer  Observer
	logger    *slog.Logger
	now       func() time.Time
}

type Option func(*Engine)

func WithLearning(v LearningStore) Option {
	return func(e *Engine) { e.learning = v }
}

func WithPolicy(v PolicyLookup) Option {
	return func(e *Engine) { e.policy = v }
}

func WithLLM(v LLM) Option {
	return func(e *Engine) { e.llm = v }
}

func WithRecords(v Records) Option {
	return func(e *Engine) { e.records = v }
}

func WithPublisher(v TurnPublisher) Option {
	return func(e *Engine) { e.publisher = v }
}

func WithObserver(v Observer) Option {
	return func(e *Engine) { e.observer = v }
}

func WithLogger(v *slog.Logger) Option {
	return func(e *Engine) { e.logger = v }
}

func WithComposer(v *respond.Composer) Option {
	return func(e *Engine) { e.composer = v }
}

func WithMatcher(v *intent.Matcher) Option {
	return func(e *Engine) { e.matcher = v }
}

// New builds an engine. A nil sessions store falls back to an in-memory one.
func New(sessions memory.Store, opts ...Option) *Engine {
	if sessions == nil {
		sessions = memory.New(memory.DefaultTTL)
	}
	e := &Engine{
		analyzer: semantic.NewAnalyzer(),
		matcher:  intent.NewMatcher(),
		composer: respond.NewComposer(nil, nil),
		sessions: sessions,
		observer: nopObserver{},
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.observer == nil {
		e.observer = nopObserver{}
	}
	return e
}

func (e *Engine) Sessions() memory.Store {
	return e.sessions
}

// Ask answers one question. It never fails: panics are recovered into the
// fixed fallback answer at confidence 0.
func (e *Engine) Ask(ctx context.Context, req Request) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("dialog engine panic", "panic", fmt.Sprint(r), "user", req.UserID)
			res = Result{
				Answer: AnswerPayload{Text: respond.Fallback},
				Match:  IntentMatch{Intent: model.GeneralIntent, Source: model.SourceFallback},
				Tier:   model.TierLow,
				Route:  model.RouteFallback,
				Labels: []string{model.GeneralIntent},
			}
		}
	}()
	return e.ask(ctx, req)
}

func (e *Engine) ask(ctx context.Context, req Request) Result {
	role := respond.MapRole(req.Role)
	var res Result

	if strings.TrimSpace(req.Question) == "" {
		res.Answer = AnswerPayload{Text: e.composer.Clarification(role)}
		res.Match = IntentMatch{Intent: model.GeneralIntent, Source: model.SourceFallback, NeedsClarification: true}
		res.Tier = model.TierLow
		res.Route = model.RouteEmpty
		res.Labels = []string{model.GeneralIntent}
		return res
	}

	fs := e.analyzer.Extract(req.Question)
	res.Features = fs
	addThought(&res, fmt.Sprintf("normalized to %q", fs.Q), "extract",
		fmt.Sprintf("%d words, question=%t, urgent=%t, sentiment=%s", fs.WordCount, fs.IsQuestion, fs.HasUrgency, fs.Sentiment))

	conv := e.conversation(ctx, req.UserID)
	match := e.matcher.Match(fs, conv)
	res.Match = match
	res.Tier = model.TierOf(match.Confidence)
	addThought(&res, fmt.Sprintf("matched %s/%s", match.Intent, match.Subtype), string(match.Source),
		fmt.Sprintf("confidence %.2f (%s)", match.Confidence, res.Tier))

	switch {
	case isConfused(req.Question):
		res.Route = model.RouteConfusion
		res.Match = IntentMatch{Intent: model.GeneralIntent, Subtype: "navigation", Confidence: 1, Source: match.Source}
		res.Tier = model.TierHigh
		res.Answer = AnswerPayload{Text: e.composer.Confusion()}
		addThought(&res, "user cannot find something on screen", "confusion", "asked which dashboard they are on")

	case match.NeedsClarification:
		res.Route = model.RouteClarify
		if req.UserID != "" {
			if err := e.sessions.Reset(ctx, req.UserID); err != nil {
				e.collaboratorFailed("sessions", err)
			}
		}
		res.Answer = AnswerPayload{Text: e.composer.Clarification(role)}
		addThought(&res, "user declined the suggested topic", "reset", "conversation cleared")

	case res.Tier == model.TierLow:
		res.Route = model.RouteClarify
		e.remember(ctx, req, match, false)
		res.Answer = AnswerPayload{Text: e.composer.Clarification(role)}
		res.Match.NeedsClarification = true

	case res.Tier == model.TierMedium:
		res.Route = model.RouteConfirm
		e.remember(ctx, req, match, true)
		res.Answer = AnswerPayload{Text: e.composer.ConfirmationPrompt(match.Intent, role)}

	default:
		res.Route = model.RouteAnswer
		e.remember(ctx, req, match, false)
		e.answer(ctx, req, fs, role, &res)
	}

	// Learned responses hold the unmarked answer so reuse never stacks the
	// urgency marker.
	learnedText := res.Answer.Text
	if res.Route == model.RouteAnswer && fs.HasUrgency {
		res.Answer.Text = respond.Urgent(res.Answer.Text)
	}

	res.Labels = labels(res.Match, fs)
	e.learn(ctx, req, res, learnedText)
	e.publish(ctx, req, role, res)
	e.observer.ObserveTurn(string(res.Match.Source), string(res.Tier), res.Match.Confidence)
	e.wrapUp(ctx, req, fs, res)
	return res
}

// answer fills res for a high-confidence match. Policy questions are
// answered from the policy document (through the language model when one is
// configured) and fall straight back to templates when the lookup fails.
// Other intents try a learned answer, then the language model, then templates.
func (e *Engine) answer(ctx context.Context, req Request, fs FeatureSet, role model.Role, res *Result) {
	match := res.Match

	if match.Intent == "policy" && e.policy != nil {
		doc, err := e.policy.Lookup(ctx, match.Subtype, req.Question)
		if err != nil {
			e.collaboratorFailed("policy", err)
			e.compose(role, res)
			return
		}
		e.answerFromPolicy(ctx, req, doc, res)
		return
	}

	if e.reuseLearned(ctx, fs, res) {
		return
	}

	if e.llm != nil {
		if text, ok := e.askLLM(ctx, req, nil); ok {
			res.Answer = AnswerPayload{Text: text}
			addThought(res, "answered by language model", "llm", "")
			return
		}
	}

	e.compose(role, res)
}

func (e *Engine) answerFromPolicy(ctx context.Context, req Request, doc model.PolicyDocument, res *Result) {
	var link *string
	if doc.Link != "" {
		l := doc.Link
		link = &l
	}

	if e.llm != nil {
		if text, ok := e.askLLM(ctx, req, &doc); ok {
			res.Answer = AnswerPayload{Text: text, Link: link}
			addThought(res, "answered from "+doc.Title+" by language model", "llm", doc.Path)
			return
		}
	}

	res.Answer = AnswerPayload{Text: e.composer.PolicyAnswer(doc, policyExcerptChars), Link: link}
	addThought(res, "quoted "+doc.Title, "policy", doc.Path)
}

// reuseLearned records the best same-intent similarity on res and reuses the
// first learned answer above the threshold.
func (e *Engine) reuseLearned(ctx context.Context, fs FeatureSet, res *Result) bool {
	if e.learning == nil {
		return false
	}
	intentName := res.Match.Intent
	similar, err := e.learning.FindSimilar(ctx, intentName, fs)
	if err != nil {
		e.collaboratorFailed("learning", err)
		return false
	}
	for _, s := range similar {
		if s.Record.IntentCategory != intentName {
			continue
		}
		if s.Similarity > res.Similarity {
			res.Similarity = s.Similarity
		}
		if s.Similarity > learnedThreshold && !res.Learned {
			res.Answer = AnswerPayload{Text: s.Record.Response}
			res.Learned = true
			addThought(res, fmt.Sprintf("reused answer to %q", s.Record.Question), "learned",
				fmt.Sprintf("similarity %.2f", s.Similarity))
		}
	}
	return res.Learned
}

func (e *Engine) compose(role model.Role, res *Result) {
	res.Answer = AnswerPayload{Text: e.composer.Compose(res.Match.Intent, res.Match.Subtype, role)}
	addThought(res, "rendered template", "compose", res.Match.Intent+"/"+res.Match.Subtype)
}

func (e *Engine) askLLM(ctx context.Context, req Request, doc *model.PolicyDocument) (string, bool) {
	var parts []string
	if doc != nil {
		parts = append(parts, doc.Title+":\n"+respond.Truncate(doc.Content, policyExcerptChars))
	}
	if e.records != nil && req.UserID != "" {
		summary, err := e.records.Summary(ctx, req.UserID)
		if err != nil {
			e.collaboratorFailed("records", err)
		} else if summary != "" {
			parts = append(parts, "Employee records:\n"+summary)
		}
	}

	text, err := e.llm.Answer(ctx, req.Question, strings.Join(parts, "\n\n"))
	if err != nil {
		e.collaboratorFailed("llm", err)
		return "", false
	}
	text = strings.TrimSpace(text)
	return text, text != ""
}

func (e *Engine) conversation(ctx context.Context, userID string) Conversation {
	if userID == "" {
		return Conversation{}
	}
	conv, ok, err := e.sessions.Get(ctx, userID)
	if err != nil {
		e.collaboratorFailed("sessions", err)
		return Conversation{UserID: userID}
	}
	if !ok {
		return Conversation{UserID: userID}
	}
	return conv
}

// remember records the gate decision together with the question that led
// to it, which also appends a history entry.
func (e *Engine) remember(ctx context.Context, req Request, match IntentMatch, pending bool) {
	if req.UserID == "" {
		return
	}
	question := req.Question
	_, err := e.sessions.Update(ctx, req.UserID, memory.Patch{
		LastIntent:          &match,
		PendingConfirmation: &pending,
		LastUserMessage:     &question,
	})
	if err != nil {
		e.collaboratorFailed("sessions", err)
	}
}

func (e *Engine) wrapUp(ctx context.Context, req Request, fs FeatureSet, res Result) {
	if req.UserID == "" || (res.Route == model.RouteClarify && res.Match.IsConfirmation) {
		return
	}
	topic := res.Match.Intent
	question := req.Question
	reply := res.Answer.Text
	sentiment := fs.Sentiment
	_, err := e.sessions.Update(ctx, req.UserID, memory.Patch{
		LastTopic:       &topic,
		LastUserMessage: &question,
		LastBotMessage:  &reply,
		Sentiment:       &sentiment,
	})
	if err != nil {
		e.collaboratorFailed("sessions", err)
	}
}

func (e *Engine) learn(ctx context.Context, req Request, res Result, text string) {
	if e.learning == nil {
		return
	}
	err := e.learning.Upsert(ctx, learning.Entry{
		Question:   req.Question,
		Response:   respond.Truncate(text, learnedResponseRune),
		UserID:     req.UserID,
		Intent:     res.Match.Intent,
		Labels:     res.Labels,
		Confidence: res.Match.Confidence,
	})
	e.observer.LearningWrite(err == nil)
	if err != nil {
		e.logger.Warn("learning write skipped", "error", err)
	}
}

func (e *Engine) publish(ctx context.Context, req Request, role model.Role, res Result) {
	if e.publisher == nil {
		return
	}
	err := e.publisher.PublishTurn(ctx, model.TurnEvent{
		UserID:     req.UserID,
		Role:       role,
		Question:   req.Question,
		Intent:     res.Match.Intent,
		Subtype:    res.Match.Subtype,
		Confidence: res.Match.Confidence,
		Tier:       res.Tier,
		Route:      res.Route,
		Learned:    res.Learned,
		Urgent:     res.Features.HasUrgency,
		Timestamp:  e.now().UTC(),
	})
	if err != nil {
		e.collaboratorFailed("events", err)
	}
}

func (e *Engine) collaboratorFailed(name string, err error) {
	e.observer.CollaboratorFailure(name)
	e.logger.Warn("collaborator failed", "collaborator", name, "error", err)
}

func isConfused(question string) bool {
	q := strings.ToLower(question)
	for _, phrase := range confusionPhrases {
		if strings.Contains(q, phrase) {
			return true
		}
	}
	return false
}

func labels(match IntentMatch, fs FeatureSet) []string {
	out := []string{match.Intent}
	if match.Subtype != "" {
		out = append(out, match.Subtype)
	}
	if fs.HasUrgency {
		out = append(out, "urgent")
	}
	if fs.IsQuestion {
		out = append(out, "question")
	}
	if fs.Sentiment != "" && fs.Sentiment != model.SentimentNeutral {
		out = append(out, string(fs.Sentiment))
	}
	return out
}
