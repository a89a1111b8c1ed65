package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/bgdnvk/hrassist/internal/agent"
	"github.com/bgdnvk/hrassist/internal/agent/respond"
)

func TestPrintResultPlain(t *testing.T) {
	e := agent.New(nil)
	res := e.Ask(context.Background(), agent.Request{Question: "What is my leave balance", UserID: "E1"})

	var buf bytes.Buffer
	if err := printResult(&buf, res, false, false); err != nil {
		t.Fatalf("printResult: %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != res.Answer.Text {
		t.Errorf("expected only the answer, got %q", got)
	}
}

func TestPrintResultVerbose(t *testing.T) {
	e := agent.New(nil)
	res := e.Ask(context.Background(), agent.Request{Question: "What is my leave balance", UserID: "E1"})

	var buf bytes.Buffer
	if err := printResult(&buf, res, true, false); err != nil {
		t.Fatalf("printResult: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"intent=leave", "tier=high", "source=anchor", "labels:", "Reasoning Chain"} {
		if !strings.Contains(out, want) {
			t.Errorf("verbose output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintResultJSON(t *testing.T) {
	e := agent.New(nil)
	res := e.Ask(context.Background(), agent.Request{Question: "What is my leave balance"})

	var buf bytes.Buffer
	if err := printResult(&buf, res, false, true); err != nil {
		t.Fatalf("printResult: %v", err)
	}
	var decoded agent.Result
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if decoded.Answer.Text != res.Answer.Text || decoded.Match.Intent != "leave" {
		t.Errorf("unexpected decoded result %+v", decoded)
	}
}

func TestRunInteractive(t *testing.T) {
	e := agent.New(nil)
	in := strings.NewReader("pay\n\nyes\nexit\nwhat is my leave balance\n")

	var out bytes.Buffer
	if err := runInteractive(context.Background(), e, in, &out, "E7", "employee", false); err != nil {
		t.Fatalf("runInteractive: %v", err)
	}

	text := out.String()
	if !strings.Contains(text, "Were you asking about payslip") {
		t.Errorf("expected a confirmation prompt:\n%s", text)
	}
	if strings.Contains(text, respond.DefaultBundles()["leave"].Templates["default"].Employee) {
		t.Errorf("input after exit must not be answered:\n%s", text)
	}

	conv, ok, err := e.Sessions().Get(context.Background(), "E7")
	if err != nil || !ok {
		t.Fatalf("expected a stored conversation, ok=%t err=%v", ok, err)
	}
	if conv.LastIntent == nil || conv.LastIntent.Intent != "payslip" || conv.PendingConfirmation {
		t.Errorf("unexpected conversation %+v", conv)
	}
}

func TestRunInteractiveEOF(t *testing.T) {
	e := agent.New(nil)
	var out bytes.Buffer
	if err := runInteractive(context.Background(), e, strings.NewReader(""), &out, "E8", "", false); err != nil {
		t.Fatalf("runInteractive: %v", err)
	}
	if out.String() != "> \n" {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestExplainScores(t *testing.T) {
	var buf bytes.Buffer
	explainScores(&buf, "What is my leave balance")

	out := buf.String()
	if !strings.Contains(out, "anchor: leave/") {
		t.Errorf("expected the anchor line:\n%s", out)
	}
	if !strings.Contains(out, `normalized: "what is my leave balance"`) {
		t.Errorf("expected the normalized question:\n%s", out)
	}
	for _, intent := range []string{"leave", "payslip", "attendance", "holidays"} {
		if !strings.Contains(out, intent) {
			t.Errorf("expected a score row for %s:\n%s", intent, out)
		}
	}
}
