package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/bgdnvk/hrassist/internal/policy"
)

func TestPrintPolicyStatus(t *testing.T) {
	statuses := []policy.PathStatus{
		{Topic: "default", Path: "policies/employee-handbook.md", Checked: true, Found: true},
		{Topic: "leave", Path: "policies/leave-policy.md", Checked: true},
		{Topic: "travel", Path: "policies/travel.md"},
	}

	var buf bytes.Buffer
	missing := printPolicyStatus(&buf, "github", statuses)
	if missing != 1 {
		t.Errorf("expected 1 missing document, got %d", missing)
	}
	out := buf.String()
	if !strings.Contains(out, "✅ default") || !strings.Contains(out, "❌ leave") || !strings.Contains(out, "   travel") {
		t.Errorf("unexpected output:\n%s", out)
	}
}
