package intent

// Anchor maps literal phrases to an intent. Anchors are checked in slice
// order and the first phrase found anywhere in the question wins.
type Anchor struct {
	Intent  string
	Phrases []string
}

// SubtypeGroup refines an intent when any of its keywords appear in the question.
type SubtypeGroup struct {
	Name     string
	Keywords []string
}

// Definition is the weighted keyword profile the classifier scores against.
type Definition struct {
	Intent   string
	Weight   float64
	Keywords []string
	Subtypes []SubtypeGroup
}

const (
	checkinIntent  = "checkin"
	checkoutIntent = "checkout"
)

var navigationIntents = map[string]bool{
	"dashboard": true,
	"calendar":  true,
	"reports":   true,
	"settings":  true,
	"logout":    true,
}

// DefaultAnchors is ordered: approvals precede leave so "team leave" routes
// to the approvals queue rather than the caller's own leave.
var DefaultAnchors = []Anchor{
	{Intent: checkinIntent, Phrases: []string{"check in", "checkin", "check-in", "punch in", "clock in", "mark attendance"}},
	{Intent: checkoutIntent, Phrases: []string{"check out", "checkout", "check-out", "punch out", "clock out"}},
	{Intent: "approvals", Phrases: []string{"my team", "team leave", "pending approvals", "approve leave"}},
	{Intent: "leave", Phrases: []string{
		"leave balance", "apply leave", "apply for leave", "leave application", "leave request",
		"sick leave", "casual leave", "earned leave", "remaining leave", "leaves left",
	}},
	{Intent: "payslip", Phrases: []string{"payslip", "pay slip", "salary slip", "download salary"}},
	{Intent: "holidays", Phrases: []string{"holiday list", "public holiday", "upcoming holiday", "holiday calendar"}},
	{Intent: "attendance", Phrases: []string{"attendance report", "my attendance", "attendance record"}},
	{Intent: "policy", Phrases: []string{"policy", "policies", "handbook", "code of conduct"}},
	{Intent: "profile", Phrases: []string{"my profile", "update profile", "edit profile", "personal details"}},
	{Intent: "documents", Phrases: []string{"offer letter", "experience letter", "salary certificate", "my documents", "form 16"}},
	{Intent: "dashboard", Phrases: []string{"go to dashboard", "open dashboard", "show dashboard"}},
	{Intent: "calendar", Phrases: []string{"open calendar", "show calendar", "go to calendar"}},
	{Intent: "reports", Phrases: []string{"open reports", "go to reports", "show reports"}},
	{Intent: "settings", Phrases: []string{"open settings", "go to settings", "account settings"}},
	{Intent: "logout", Phrases: []string{"logout", "log out", "sign out"}},
}

// DefaultDefinitions is ordered; on equal scores the earlier intent wins.
// No keyword may contain "pay" except "pay" itself.
var DefaultDefinitions = []Definition{
	{
		Intent: "leave",
		Weight: 1.0,
		Keywords: []string{
			"leave", "leaves", "vacation", "time off", "absence", "sick",
			"casual", "earned", "maternity", "paternity",
		},
		Subtypes: []SubtypeGroup{
			{Name: "balance", Keywords: []string{"balance", "remaining", "left", "how many"}},
			{Name: "apply", Keywords: []string{"apply", "application", "take"}},
			{Name: "cancel", Keywords: []string{"cancel", "withdraw", "revoke"}},
			{Name: "status", Keywords: []string{"status", "approved", "rejected"}},
		},
	},
	{
		Intent: "attendance",
		Weight: 0.9,
		Keywords: []string{
			"attendance", "present", "absent", "late", "punch", "clock",
			"working hours", "timesheet", "regularize", "shift",
		},
		Subtypes: []SubtypeGroup{
			{Name: "checkin", Keywords: []string{"check in", "checkin", "punch in", "clock in"}},
			{Name: "report", Keywords: []string{"report", "history", "record", "summary"}},
			{Name: "regularize", Keywords: []string{"regularize", "regularise", "correction", "missed punch"}},
		},
	},
	{
		Intent: "payslip",
		Weight: 0.9,
		Keywords: []string{
			"salary", "pay", "slip", "wages", "earnings", "deductions", "tax",
			"ctc", "bonus", "reimbursement", "income",
		},
		Subtypes: []SubtypeGroup{
			{Name: "download", Keywords: []string{"download", "pdf", "print"}},
			{Name: "breakdown", Keywords: []string{"breakdown", "deduction", "gross", "components"}},
		},
	},
	{
		Intent: "holidays",
		Weight: 0.85,
		Keywords: []string{
			"holiday", "holidays", "festival", "day off", "long weekend", "optional holiday",
		},
		Subtypes: []SubtypeGroup{
			{Name: "upcoming", Keywords: []string{"upcoming", "next", "coming"}},
			{Name: "list", Keywords: []string{"list", "calendar", "all"}},
		},
	},
	{
		Intent: "policy",
		Weight: 0.85,
		Keywords: []string{
			"rule", "rules", "guideline", "guidelines", "conduct", "dress code",
			"notice period", "work from home", "wfh", "remote",
		},
		Subtypes: []SubtypeGroup{
			{Name: "leave", Keywords: []string{"leave"}},
			{Name: "remote_work", Keywords: []string{"work from home", "wfh", "remote"}},
			{Name: "travel", Keywords: []string{"travel", "reimburse"}},
			{Name: "conduct", Keywords: []string{"conduct", "harassment", "dress code"}},
			{Name: "exit", Keywords: []string{"notice period", "resign", "resignation"}},
		},
	},
	{
		Intent: "profile",
		Weight: 0.8,
		Keywords: []string{
			"profile", "address", "phone", "email", "bank account", "emergency contact", "designation",
		},
		Subtypes: []SubtypeGroup{
			{Name: "update", Keywords: []string{"update", "change", "edit"}},
		},
	},
	{
		Intent: "documents",
		Weight: 0.8,
		Keywords: []string{
			"document", "documents", "letter", "certificate", "id card", "proof",
		},
		Subtypes: []SubtypeGroup{
			{Name: "request", Keywords: []string{"request", "generate", "issue"}},
		},
	},
	{
		Intent: "approvals",
		Weight: 0.85,
		Keywords: []string{
			"approve", "approval", "approvals", "reportee", "reportees", "pending requests",
		},
	},
}
