package semantic

import (
	"maps"
	"slices"
)

var (
	defaultCorrections = []Correction{
		{From: "attendence", To: "attendance"},
		{From: "atendance", To: "attendance"},
		{From: "attandance", To: "attendance"},
		{From: "salery", To: "salary"},
		{From: "sallary", To: "salary"},
		{From: "paysilp", To: "payslip"},
		{From: "payslp", To: "payslip"},
		{From: "holliday", To: "holiday"},
		{From: "hoilday", To: "holiday"},
		{From: "holidy", To: "holiday"},
		{From: "pollicy", To: "policy"},
		{From: "polcy", To: "policy"},
		{From: "balence", To: "balance"},
		{From: "balanse", To: "balance"},
		{From: "levae", To: "leave"},
		{From: "leeve", To: "leave"},
		{From: "lve", To: "leave"},
		{From: "approvel", To: "approval"},
		{From: "aproval", To: "approval"},
		{From: "documnet", To: "document"},
		{From: "profle", To: "profile"},
		{From: "chek", To: "check"},
		{From: "reciept", To: "receipt"},
	}

	defaultVerbs = newWordSet(
		"is", "are", "was", "were", "be", "am", "do", "does", "did", "can", "could",
		"have", "has", "had", "will", "would", "should", "shall",
		"apply", "applied", "check", "download", "view", "see", "show", "update",
		"cancel", "approve", "reject", "submit", "upload", "get", "find", "request",
		"take", "need", "want", "know", "change", "edit", "mark", "punch",
		"regularize", "withdraw", "print", "export", "reset", "login", "logout",
		"tell", "give", "help", "calculate", "claim", "book", "plan", "open",
		"access", "deduct", "deducted", "pay", "paid", "work", "join", "resign",
		"remain", "left", "go", "come", "add", "remove", "send", "receive",
	)

	defaultNouns = newWordSet(
		"leave", "leaves", "balance", "salary", "payslip", "payslips", "slip",
		"attendance", "holiday", "holidays", "policy", "policies", "profile",
		"document", "documents", "manager", "team", "report", "reports",
		"dashboard", "calendar", "settings", "tax", "deduction", "deductions",
		"bonus", "day", "days", "month", "week", "year", "shift", "office",
		"address", "phone", "bank", "account", "pf", "insurance", "approval",
		"approvals", "application", "request", "requests", "handbook",
		"conduct", "travel", "reimbursement", "wages", "earnings", "ctc",
		"letter", "certificate", "employee", "hr", "time", "hours", "overtime",
		"notice", "period", "appraisal", "increment", "form", "id", "email",
	)

	defaultAdjectives = newWordSet(
		"sick", "casual", "earned", "annual", "remaining", "pending", "upcoming",
		"public", "optional", "paid", "unpaid", "late", "early", "monthly",
		"last", "next", "previous", "current", "new", "old", "urgent", "gross",
		"net", "total", "maternity", "paternity", "personal", "official",
	)

	defaultStopwords = newWordSet(
		"a", "an", "the", "i", "me", "my", "mine", "we", "our", "you", "your",
		"it", "its", "this", "that", "these", "those", "to", "of", "in", "on",
		"at", "for", "with", "from", "by", "about", "and", "or", "but", "so",
		"what", "how", "when", "where", "why", "who", "which", "please", "pls",
		"any", "some", "there", "here", "if", "then", "than", "as", "up", "out",
		"much", "many", "just", "also", "too", "very", "hi", "hello", "hey",
	)

	defaultQuestionWords = newWordSet(
		"what", "how", "when", "where", "why", "who", "which", "whose", "whom",
		"can", "could", "do", "does", "did", "is", "are", "was", "will",
		"would", "should", "may", "am", "have", "has",
	)

	defaultNegationWords = newWordSet(
		"not", "no", "never", "nothing", "none", "nor", "neither", "without",
		"don't", "dont", "can't", "cant", "cannot", "won't", "wont", "didn't",
		"didnt", "isn't", "isnt", "doesn't", "doesnt", "haven't", "havent",
		"hasn't", "hasnt", "wasn't", "wasnt", "aren't", "arent",
	)

	defaultPositiveWords = newWordSet(
		"thanks", "thank", "great", "good", "awesome", "helpful", "perfect",
		"nice", "love", "happy", "excellent", "appreciate", "cool", "glad",
	)

	defaultNegativeWords = newWordSet(
		"bad", "wrong", "angry", "upset", "frustrated", "annoyed", "terrible",
		"broken", "useless", "hate", "problem", "issue", "error", "worst",
		"confused", "unhappy", "stuck", "fail", "failed",
	)

	defaultUrgencyPhrases = []string{
		"urgent", "asap", "immediately", "emergency", "right now", "right away",
		"as soon as possible", "critical", "today itself",
	}
)

func newWordSet(words ...string) WordSet {
	ws := make(WordSet, len(words))
	for _, w := range words {
		ws[w] = struct{}{}
	}
	return ws
}

func cloneWordSet(src WordSet) WordSet {
	dst := make(WordSet, len(src))
	maps.Copy(dst, src)
	return dst
}

func cloneCorrections(src []Correction) []Correction {
	return slices.Clone(src)
}

func clonePhrases(src []string) []string {
	return slices.Clone(src)
}
