package agent

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/bgdnvk/hrassist/internal/agent/learning"
	"github.com/bgdnvk/hrassist/internal/agent/memory"
	"github.com/bgdnvk/hrassist/internal/agent/model"
	"github.com/bgdnvk/hrassist/internal/agent/respond"
)

type fakeLearning struct {
	entries  []learning.Entry
	similar  []model.SimilarRecord
	err      error
	searches int
}

func (f *fakeLearning) Upsert(_ context.Context, e learning.Entry) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, e)
	return nil
}

func (f *fakeLearning) FindSimilar(_ context.Context, _ string, _ model.FeatureSet) ([]model.SimilarRecord, error) {
	f.searches++
	return f.similar, f.err
}

type fakePolicy struct {
	doc   model.PolicyDocument
	err   error
	panic bool
}

func (f *fakePolicy) Lookup(_ context.Context, _, _ string) (model.PolicyDocument, error) {
	if f.panic {
		panic("policy store exploded")
	}
	return f.doc, f.err
}

type fakeLLM struct {
	answer      string
	err         error
	contextText string
	calls       int
}

func (f *fakeLLM) Answer(_ context.Context, _, contextText string) (string, error) {
	f.calls++
	f.contextText = contextText
	return f.answer, f.err
}

type fakeRecords struct{ summary string }

func (f fakeRecords) Summary(_ context.Context, _ string) (string, error) {
	return f.summary, nil
}

type fakePublisher struct{ events []model.TurnEvent }

func (f *fakePublisher) PublishTurn(_ context.Context, ev model.TurnEvent) error {
	f.events = append(f.events, ev)
	return nil
}

type fakeObserver struct {
	turns          int
	learningWrites map[bool]int
	failures       map[string]int
}

func newFakeObserver() *fakeObserver {
	return &fakeObserver{learningWrites: map[bool]int{}, failures: map[string]int{}}
}

func (f *fakeObserver) ObserveTurn(string, string, float64) { f.turns++ }

func (f *fakeObserver) LearningWrite(ok bool) { f.learningWrites[ok]++ }

func (f *fakeObserver) CollaboratorFailure(name string) { f.failures[name]++ }

func leaveDefault() string {
	return respond.DefaultBundles()["leave"].Templates["default"].Employee
}

func TestAskAnchoredAnswer(t *testing.T) {
	e := New(nil)
	res := e.Ask(context.Background(), Request{Question: "What is my leave balance", UserID: "E1", Role: "employee"})

	if res.Match.Intent != "leave" || res.Match.Subtype != "" || res.Match.Confidence != 0.99 {
		t.Errorf("unexpected match %+v", res.Match)
	}
	if res.Route != model.RouteAnswer || res.Tier != model.TierHigh {
		t.Errorf("expected high-tier answer, got %s/%s", res.Tier, res.Route)
	}
	if expected := "📋 " + leaveDefault(); res.Answer.Text != expected {
		t.Errorf("expected %q, got %q", expected, res.Answer.Text)
	}
	if res.Answer.Link != nil {
		t.Errorf("template answers carry no link, got %q", *res.Answer.Link)
	}
}

func TestAskConfirmationRoundTrip(t *testing.T) {
	e := New(nil)
	ctx := context.Background()

	res := e.Ask(ctx, Request{Question: "pay", UserID: "E1"})
	if res.Route != model.RouteConfirm || res.Match.Intent != "payslip" {
		t.Fatalf("expected a confirmation prompt for payslip, got %s %+v", res.Route, res.Match)
	}
	if !strings.Contains(res.Answer.Text, "Were you asking about payslip, leave, attendance, or holidays?") {
		t.Errorf("unexpected prompt %q", res.Answer.Text)
	}
	conv, ok, err := e.Sessions().Get(ctx, "E1")
	if err != nil || !ok || !conv.PendingConfirmation || conv.LastIntent == nil || conv.LastIntent.Intent != "payslip" {
		t.Fatalf("expected pending payslip confirmation, got %+v (ok=%t, err=%v)", conv, ok, err)
	}

	res = e.Ask(ctx, Request{Question: "yes", UserID: "E1"})
	if res.Match.Intent != "payslip" || res.Match.Confidence != 0.95 || !res.Match.IsConfirmation {
		t.Errorf("unexpected confirmed match %+v", res.Match)
	}
	if res.Route != model.RouteAnswer || !strings.HasPrefix(res.Answer.Text, "💰 ") {
		t.Errorf("expected the payslip answer, got %s %q", res.Route, res.Answer.Text)
	}
	conv, _, _ = e.Sessions().Get(ctx, "E1")
	if conv.PendingConfirmation {
		t.Error("confirmation should be cleared after yes")
	}
	if len(conv.History) != 2 || conv.History[0].UserSaid != "pay" || conv.History[1].UserSaid != "yes" {
		t.Errorf("unexpected history %+v", conv.History)
	}
	if conv.LastBotMessage != res.Answer.Text || conv.LastTopic != "payslip" {
		t.Errorf("unexpected wrap-up state %+v", conv)
	}
}

func TestAskDeclineResetsConversation(t *testing.T) {
	e := New(nil)
	ctx := context.Background()

	e.Ask(ctx, Request{Question: "pay", UserID: "E1"})
	res := e.Ask(ctx, Request{Question: "no", UserID: "E1"})

	if res.Route != model.RouteClarify || !res.Match.NeedsClarification || res.Match.Confidence != 0.9 {
		t.Errorf("unexpected decline result %s %+v", res.Route, res.Match)
	}
	if !strings.HasPrefix(res.Answer.Text, "I'm not quite sure what you need") {
		t.Errorf("expected the clarification list, got %q", res.Answer.Text)
	}
	if _, ok, _ := e.Sessions().Get(ctx, "E1"); ok {
		t.Error("expected the conversation to be reset")
	}
}

func TestAskConfusionOverride(t *testing.T) {
	e := New(nil)
	res := e.Ask(context.Background(), Request{Question: "I don't see my payslip", UserID: "E1"})
	if res.Route != model.RouteConfusion || res.Match.Confidence != 1 {
		t.Errorf("expected confusion override, got %s %+v", res.Route, res.Match)
	}
	if res.Answer.Text != e.composer.Confusion() {
		t.Errorf("unexpected answer %q", res.Answer.Text)
	}
}

func TestAskLowConfidence(t *testing.T) {
	e := New(nil)
	ctx := context.Background()
	res := e.Ask(ctx, Request{Question: "xyzzy", UserID: "E1", Role: "hr"})

	if res.Route != model.RouteClarify || res.Tier != model.TierLow || !res.Match.NeedsClarification {
		t.Errorf("unexpected result %s %s %+v", res.Route, res.Tier, res.Match)
	}
	if !strings.Contains(res.Answer.Text, "Team approvals") {
		t.Errorf("management clarification should list team topics, got %q", res.Answer.Text)
	}
	conv, ok, _ := e.Sessions().Get(ctx, "E1")
	if !ok || conv.PendingConfirmation || conv.LastIntent == nil {
		t.Errorf("expected stored intent without pending confirmation, got %+v", conv)
	}
}

func TestAskEmptyQuestion(t *testing.T) {
	learn := &fakeLearning{}
	e := New(nil, WithLearning(learn))
	res := e.Ask(context.Background(), Request{Question: "   ", UserID: "E1"})
	if res.Route != model.RouteEmpty || res.Match.Confidence != 0 || res.Match.Intent != model.GeneralIntent {
		t.Errorf("unexpected empty result %s %+v", res.Route, res.Match)
	}
	if len(learn.entries) != 0 {
		t.Error("empty questions should not be learned")
	}
}

func TestAskUrgent(t *testing.T) {
	e := New(nil)
	res := e.Ask(context.Background(), Request{Question: "urgent: leave balance please"})
	if !strings.HasPrefix(res.Answer.Text, "⚡ 📋 ") || !strings.HasSuffix(res.Answer.Text, "contact your HR team directly.") {
		t.Errorf("unexpected urgent answer %q", res.Answer.Text)
	}
	if !contains(res.Labels, "urgent") {
		t.Errorf("expected urgent label, got %v", res.Labels)
	}
}

func TestAskPolicyDocument(t *testing.T) {
	policy := &fakePolicy{doc: model.PolicyDocument{
		Topic:   "leave",
		Title:   "Leave Policy",
		Content: strings.Repeat("a", 900),
		Link:    "https://github.com/acme/hr-docs/blob/main/policies/leave-policy.md",
	}}
	e := New(nil, WithPolicy(policy))
	res := e.Ask(context.Background(), Request{Question: "what is the leave policy"})

	if res.Match.Intent != "policy" {
		t.Fatalf("expected policy intent, got %+v", res.Match)
	}
	if !strings.HasPrefix(res.Answer.Text, "📘 Here's what the Leave Policy says:") {
		t.Errorf("unexpected answer %q", res.Answer.Text)
	}
	if !strings.HasSuffix(res.Answer.Text, strings.Repeat("a", 800)+"...") {
		t.Error("policy content should be cut to 800 characters")
	}
	if res.Answer.Link == nil || *res.Answer.Link != policy.doc.Link {
		t.Errorf("expected document link, got %v", res.Answer.Link)
	}
}

func TestAskPolicyFailureFallsBackToTemplate(t *testing.T) {
	obs := newFakeObserver()
	e := New(nil, WithPolicy(&fakePolicy{err: errors.New("not found")}), WithObserver(obs))
	res := e.Ask(context.Background(), Request{Question: "what is the leave policy"})

	if !strings.HasPrefix(res.Answer.Text, "📘 ") || res.Answer.Link != nil {
		t.Errorf("expected the policy template, got %q", res.Answer.Text)
	}
	if obs.failures["policy"] != 1 {
		t.Errorf("expected one policy failure, got %v", obs.failures)
	}
}

func TestAskPolicyFailureSkipsLearnedAnswers(t *testing.T) {
	learn := &fakeLearning{similar: []model.SimilarRecord{
		{Record: model.LearningRecord{Response: "stale policy answer", IntentCategory: "policy"}, Similarity: 0.95},
	}}
	e := New(nil, WithPolicy(&fakePolicy{err: errors.New("not found")}), WithLearning(learn))
	res := e.Ask(context.Background(), Request{Question: "what is the leave policy"})

	if res.Learned || !strings.HasPrefix(res.Answer.Text, "📘 ") {
		t.Errorf("expected the policy template, got learned=%t %q", res.Learned, res.Answer.Text)
	}
	if learn.searches != 0 {
		t.Errorf("learned answers should not be searched, got %d searches", learn.searches)
	}
}

func newSQLiteLearning(t *testing.T) *learning.Repository {
	t.Helper()
	ctx := context.Background()
	db, err := learning.Open(ctx, learning.SQLite, ":memory:")
	if err != nil {
		t.Fatalf("open learning db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	repo := learning.NewRepository(db, learning.SQLite, learning.WithRetry(learning.Retry{}))
	if err := repo.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return repo
}

func TestAskRepeatedUrgentQuestionMarksOnce(t *testing.T) {
	e := New(nil, WithLearning(newSQLiteLearning(t)))
	note := strings.TrimPrefix(respond.Urgent(""), "⚡ \n\n")

	var res Result
	for i := 1; i <= 5; i++ {
		res = e.Ask(context.Background(), Request{Question: "urgent: what is my leave balance", UserID: "E1"})
		if n := strings.Count(res.Answer.Text, "⚡"); n != 1 {
			t.Errorf("turn %d: expected one urgency marker, got %d in %q", i, n, res.Answer.Text)
		}
		if n := strings.Count(res.Answer.Text, note); n != 1 {
			t.Errorf("turn %d: expected one urgency note, got %d", i, n)
		}
	}
	if !res.Learned {
		t.Error("the repeated question should be answered from learning")
	}
	if res.Answer.Text != respond.Urgent("📋 "+leaveDefault()) {
		t.Errorf("unexpected answer %q", res.Answer.Text)
	}
}

func TestAskRepeatedNounOnlyQuestionIsLearned(t *testing.T) {
	e := New(nil, WithLearning(newSQLiteLearning(t)))

	var res Result
	for i := 0; i < 5; i++ {
		res = e.Ask(context.Background(), Request{Question: "leave balance", UserID: "E1"})
	}
	if !res.Learned || res.Similarity != 1 {
		t.Errorf("expected a learned answer at similarity 1, got learned=%t sim=%v", res.Learned, res.Similarity)
	}
	if res.Answer.Text != "📋 "+leaveDefault() {
		t.Errorf("unexpected answer %q", res.Answer.Text)
	}
}

func TestAskLearnedAnswerBeforeLLM(t *testing.T) {
	learn := &fakeLearning{similar: []model.SimilarRecord{
		{Record: model.LearningRecord{Question: "leave balance", Response: "learned text", IntentCategory: "leave"}, Similarity: 0.95},
	}}
	llm := &fakeLLM{answer: "llm text"}
	e := New(nil, WithLearning(learn), WithLLM(llm))
	res := e.Ask(context.Background(), Request{Question: "leave balance", UserID: "E1"})

	if !res.Learned || res.Answer.Text != "learned text" || res.Similarity != 0.95 {
		t.Errorf("expected the learned answer, got learned=%t sim=%v %q", res.Learned, res.Similarity, res.Answer.Text)
	}
	if llm.calls != 0 {
		t.Errorf("language model should not be asked, got %d calls", llm.calls)
	}

	learn.similar = nil
	res = e.Ask(context.Background(), Request{Question: "leave balance", UserID: "E1"})
	if res.Learned || res.Answer.Text != "llm text" || llm.calls != 1 {
		t.Errorf("expected the language model answer, got learned=%t %q (calls %d)", res.Learned, res.Answer.Text, llm.calls)
	}
}

func TestAskLearnedAnswer(t *testing.T) {
	learn := &fakeLearning{similar: []model.SimilarRecord{
		{Record: model.LearningRecord{Question: "leave balance?", Response: "You can see it under Leave.", IntentCategory: "leave"}, Similarity: 0.9},
		{Record: model.LearningRecord{Question: "leave days", Response: "other", IntentCategory: "leave"}, Similarity: 0.6},
	}}
	e := New(nil, WithLearning(learn))
	res := e.Ask(context.Background(), Request{Question: "what is my leave balance", UserID: "E1"})

	if !res.Learned || res.Answer.Text != "You can see it under Leave." || res.Similarity != 0.9 {
		t.Errorf("expected the learned answer, got learned=%t sim=%v %q", res.Learned, res.Similarity, res.Answer.Text)
	}
	if len(learn.entries) != 1 {
		t.Fatalf("expected one learning write, got %d", len(learn.entries))
	}
	entry := learn.entries[0]
	if entry.Intent != "leave" || entry.UserID != "E1" || entry.Confidence != 0.99 || !contains(entry.Labels, "question") {
		t.Errorf("unexpected entry %+v", entry)
	}
}

func TestAskLearnedAnswerBelowThreshold(t *testing.T) {
	learn := &fakeLearning{similar: []model.SimilarRecord{
		{Record: model.LearningRecord{Response: "close but no", IntentCategory: "leave"}, Similarity: 0.85},
		{Record: model.LearningRecord{Response: "wrong intent", IntentCategory: "payslip"}, Similarity: 0.99},
	}}
	e := New(nil, WithLearning(learn))
	res := e.Ask(context.Background(), Request{Question: "what is my leave balance"})
	if res.Learned || res.Answer.Text != "📋 "+leaveDefault() {
		t.Errorf("expected the template answer, got %q", res.Answer.Text)
	}
	if res.Similarity != 0.85 {
		t.Errorf("expected similarity 0.85, got %v", res.Similarity)
	}
}

func TestAskLearningFailureIsSwallowed(t *testing.T) {
	obs := newFakeObserver()
	e := New(nil, WithLearning(&fakeLearning{err: errors.New("db down")}), WithObserver(obs))
	res := e.Ask(context.Background(), Request{Question: "leave balance"})
	if res.Answer.Text != "📋 "+leaveDefault() {
		t.Errorf("unexpected answer %q", res.Answer.Text)
	}
	if obs.learningWrites[false] != 1 || obs.turns != 1 {
		t.Errorf("unexpected observations %+v", obs)
	}
}

func TestAskLLM(t *testing.T) {
	llm := &fakeLLM{answer: "You have 12 casual days left."}
	e := New(nil, WithLLM(llm), WithRecords(fakeRecords{summary: "leave balance:\n- casual=12"}))
	res := e.Ask(context.Background(), Request{Question: "leave balance", UserID: "E1"})

	if res.Answer.Text != "You have 12 casual days left." {
		t.Errorf("unexpected answer %q", res.Answer.Text)
	}
	if !strings.Contains(llm.contextText, "casual=12") {
		t.Errorf("expected employee records in the context, got %q", llm.contextText)
	}
}

func TestAskLLMFailureFallsBack(t *testing.T) {
	obs := newFakeObserver()
	e := New(nil, WithLLM(&fakeLLM{err: errors.New("quota")}), WithObserver(obs))
	res := e.Ask(context.Background(), Request{Question: "leave balance"})
	if res.Answer.Text != "📋 "+leaveDefault() {
		t.Errorf("unexpected answer %q", res.Answer.Text)
	}
	if obs.failures["llm"] != 1 {
		t.Errorf("expected one llm failure, got %v", obs.failures)
	}
}

func TestAskRecoversFromPanic(t *testing.T) {
	e := New(nil, WithPolicy(&fakePolicy{panic: true}))
	res := e.Ask(context.Background(), Request{Question: "show me the handbook"})
	if res.Route != model.RouteFallback || res.Match.Confidence != 0 || res.Answer.Text != respond.Fallback {
		t.Errorf("expected the fallback answer, got %s %+v %q", res.Route, res.Match, res.Answer.Text)
	}
}

func TestAskPublishesTurns(t *testing.T) {
	pub := &fakePublisher{}
	e := New(nil, WithPublisher(pub))
	e.Ask(context.Background(), Request{Question: "leave balance", UserID: "E1", Role: "ceo"})

	if len(pub.events) != 1 {
		t.Fatalf("expected one event, got %d", len(pub.events))
	}
	ev := pub.events[0]
	if ev.UserID != "E1" || ev.Intent != "leave" || ev.Role != model.RoleManagement || ev.Route != model.RouteAnswer {
		t.Errorf("unexpected event %+v", ev)
	}
}

func TestAskAnonymousKeepsNoState(t *testing.T) {
	sessions := memory.New(memory.DefaultTTL)
	e := New(sessions)
	e.Ask(context.Background(), Request{Question: "pay"})
	if sessions.Len() != 0 {
		t.Errorf("expected no conversations, got %d", sessions.Len())
	}
}

func TestAskHistoryIsBounded(t *testing.T) {
	e := New(nil)
	ctx := context.Background()
	for i := 0; i < 10; i++ {
		e.Ask(ctx, Request{Question: "leave balance", UserID: "E1"})
	}
	conv, _, _ := e.Sessions().Get(ctx, "E1")
	if len(conv.History) != model.MaxHistory {
		t.Errorf("expected %d history entries, got %d", model.MaxHistory, len(conv.History))
	}
}

func TestLabels(t *testing.T) {
	got := labels(model.IntentMatch{Intent: "leave", Subtype: "balance"}, model.FeatureSet{
		IsQuestion: true,
		HasUrgency: true,
		Sentiment:  model.SentimentNegative,
	})
	expected := []string{"leave", "balance", "urgent", "question", "negative"}
	if strings.Join(got, ",") != strings.Join(expected, ",") {
		t.Errorf("expected %v, got %v", expected, got)
	}
}

func TestDisplayChainOfThought(t *testing.T) {
	e := New(nil)
	res := e.Ask(context.Background(), Request{Question: "leave balance"})
	var buf bytes.Buffer
	DisplayChainOfThought(&buf, res)
	if !strings.Contains(buf.String(), "anchor: matched leave/") {
		t.Errorf("unexpected reasoning output %q", buf.String())
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
