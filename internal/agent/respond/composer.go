// Package respond turns a resolved intent into user-facing text.
package respond

import (
	"fmt"
	"strings"

	"github.com/bgdnvk/hrassist/internal/agent/model"
)

const (
	// Fallback is returned whenever the engine cannot produce anything better.
	Fallback = "I'm here to help! Something went wrong on my side, but you can ask me about leave, attendance, payslips, holidays or HR policies."

	genericAnswer = "I can help with leave, attendance, payslips, holidays and HR policies. Could you tell me a bit more?"

	confusion = "It sounds like something isn't showing up where you expected. Which dashboard are you on: Employee, Manager or HR Admin? Tell me and I'll point you to the right place."

	urgentNote = "This looks urgent. If it can't wait, contact your HR team directly."
)

var managementRoles = map[string]bool{
	"hr":         true,
	"admin":      true,
	"superadmin": true,
	"ceo":        true,
}

var topicLabels = map[string]string{
	"leave":      "leave",
	"attendance": "attendance",
	"payslip":    "payslip",
	"holidays":   "holidays",
	"policy":     "company policy",
	"profile":    "your profile",
	"documents":  "documents",
	"approvals":  "approvals",
}

// commonTopics are offered alongside the best guess in a confirmation prompt.
var commonTopics = []string{"payslip", "leave", "attendance", "holidays"}

// MapRole collapses application roles into the two template audiences.
func MapRole(role string) model.Role {
	if managementRoles[strings.ToLower(strings.TrimSpace(role))] {
		return model.RoleManagement
	}
	return model.RoleEmployee
}

type Composer struct {
	bundles map[string]Bundle
	toner   Toner
}

// NewComposer uses the built-in bundles when bundles is nil and the opener
// toner when toner is nil.
func NewComposer(bundles map[string]Bundle, toner Toner) *Composer {
	if bundles == nil {
		bundles = DefaultBundles()
	}
	if toner == nil {
		toner = OpenerToner{}
	}
	return &Composer{bundles: bundles, toner: toner}
}

// Compose renders the template for intent/subtype in the voice of role.
// Unknown intents use the general bundle and unknown subtypes use default.
func (c *Composer) Compose(intent, subtype string, role model.Role) string {
	bundle, ok := c.bundles[intent]
	if !ok {
		bundle = c.bundles[model.GeneralIntent]
	}

	tpl, ok := bundle.Templates[subtype]
	if subtype == "" || !ok {
		tpl = bundle.Templates[defaultKey]
	}

	text := tpl.Employee
	if role == model.RoleManagement && tpl.Management != "" {
		text = tpl.Management
	}
	if text == "" {
		text = genericAnswer
	}

	text = c.toner.Wrap(text, intent)
	if bundle.Emoji == "" {
		return text
	}
	return bundle.Emoji + " " + text
}

// Clarification lists what the assistant can help with.
func (c *Composer) Clarification(role model.Role) string {
	lines := []string{
		"I'm not quite sure what you need. I can help with:",
		"• Leave balance and leave applications",
		"• Attendance and check-in",
		"• Payslips and salary",
		"• Holidays",
		"• HR policies",
	}
	if role == model.RoleManagement {
		lines = append(lines, "• Team approvals", "• Team attendance reports")
	}
	lines = append(lines, "Which of these is closest?")
	return strings.Join(lines, "\n")
}

// ConfirmationPrompt asks the user to confirm a medium-confidence guess,
// naming the guess first and then the common topics.
func (c *Composer) ConfirmationPrompt(intent string, role model.Role) string {
	guess, ok := topicLabels[intent]
	options := make([]string, 0, len(commonTopics)+1)
	if ok {
		options = append(options, guess)
	}
	for _, topic := range commonTopics {
		if topic != intent {
			options = append(options, topicLabels[topic])
		}
	}
	list := strings.Join(options[:len(options)-1], ", ") + ", or " + options[len(options)-1]

	var sb strings.Builder
	fmt.Fprintf(&sb, "🤔 Were you asking about %s?", list)
	if ok {
		fmt.Fprintf(&sb, " Reply yes if it's %s, or no and tell me more.", guess)
	}
	if role == model.RoleManagement {
		sb.WriteString(" Let me know if it's for yourself or your team.")
	}
	return sb.String()
}

func (c *Composer) Confusion() string {
	return confusion
}

// PolicyAnswer quotes a policy document, cut to limit characters.
func (c *Composer) PolicyAnswer(doc model.PolicyDocument, limit int) string {
	emoji := c.bundles["policy"].Emoji
	body := Truncate(strings.TrimSpace(doc.Content), limit)
	title := doc.Title
	if title == "" {
		title = "policy"
	}
	return strings.TrimSpace(fmt.Sprintf("%s Here's what the %s says:\n\n%s", emoji, title, body))
}

// Urgent marks an answer as urgent.
func Urgent(text string) string {
	return "⚡ " + text + "\n\n" + urgentNote
}

// Truncate cuts text to at most limit runes, marking the cut with "...".
func Truncate(text string, limit int) string {
	if limit <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return strings.TrimSpace(string(runes[:limit])) + "..."
}
