package respond

import (
	"fmt"
	"maps"
	"os"

	"gopkg.in/yaml.v3"
)

// Template holds the role variants of one answer.
type Template struct {
	Employee   string `yaml:"employee"`
	Management string `yaml:"management"`
}

// Bundle is the set of templates for one intent, keyed by subtype. The
// "default" key is used when the subtype is empty or unknown.
type Bundle struct {
	Emoji     string              `yaml:"emoji"`
	Templates map[string]Template `yaml:"templates"`
}

const defaultKey = "default"

var defaultBundles = map[string]Bundle{
	"leave": {
		Emoji: "📋",
		Templates: map[string]Template{
			defaultKey: {
				Employee:   "Here's how to check your leave balance: open Leave → My Balance on your dashboard to see what's left in each leave type for this year.",
				Management: "Here's where to find leave balances: open Leave → Team Balances to review your own balance and your reportees' remaining leave.",
			},
			"balance": {
				Employee:   "Here's how to check your leave balance: open Leave → My Balance on your dashboard to see what's left in each leave type for this year.",
				Management: "Here's where to find leave balances: open Leave → Team Balances to review your own balance and your reportees' remaining leave.",
			},
			"apply": {
				Employee: "To apply for leave, go to Leave → Apply, pick the leave type and dates, add a short reason and submit. Your manager is notified straight away.",
			},
			"cancel": {
				Employee: "To cancel a leave request, open Leave → My Requests, select the request and choose Withdraw. Approved leave can be withdrawn until its start date.",
			},
			"status": {
				Employee:   "Your leave requests and their approval status are listed under Leave → My Requests.",
				Management: "Pending and decided leave requests for your team are listed under Approvals → Leave.",
			},
		},
	},
	"attendance": {
		Emoji: "🕒",
		Templates: map[string]Template{
			defaultKey: {
				Employee:   "Your attendance for the current month is under Attendance → My Attendance, including late marks and missed punches.",
				Management: "Team attendance, late marks and absentees are under Attendance → Team Report.",
			},
			"checkin": {
				Employee: "Use the Check In / Check Out button at the top of your dashboard. Your punch time is recorded immediately.",
			},
			"report": {
				Employee:   "Download your monthly attendance report from Attendance → Reports.",
				Management: "Download attendance reports for your team from Attendance → Reports → Team.",
			},
			"regularize": {
				Employee: "Missed a punch? Raise a regularization request from Attendance → Regularize and your manager will review it.",
			},
		},
	},
	"payslip": {
		Emoji: "💰",
		Templates: map[string]Template{
			defaultKey: {
				Employee:   "Your payslips are under Payroll → My Payslips. Pick a month to view or download it.",
				Management: "Payslips for any month are under Payroll → My Payslips; payroll summaries for your team are under Payroll → Reports.",
			},
			"download": {
				Employee: "Open Payroll → My Payslips, choose the month and press Download PDF.",
			},
			"breakdown": {
				Employee: "Each payslip lists gross pay, every deduction and your net pay. Open Payroll → My Payslips and select a month to see the breakdown.",
			},
		},
	},
	"holidays": {
		Emoji: "🎉",
		Templates: map[string]Template{
			defaultKey: {
				Employee: "The holiday calendar for this year is under Calendar → Holidays, with optional holidays marked separately.",
			},
			"upcoming": {
				Employee: "Upcoming holidays are highlighted at the top of Calendar → Holidays.",
			},
			"list": {
				Employee: "The full list of public and optional holidays is under Calendar → Holidays.",
			},
		},
	},
	"policy": {
		Emoji: "📘",
		Templates: map[string]Template{
			defaultKey: {
				Employee:   "Company policies are available under Documents → Policies. Let me know which policy you need and I'll point you to it.",
				Management: "All company policies, including manager guidelines, are under Documents → Policies.",
			},
		},
	},
	"profile": {
		Emoji: "👤",
		Templates: map[string]Template{
			defaultKey: {
				Employee: "Your personal details are under Profile. Open it from the menu in the top-right corner.",
			},
			"update": {
				Employee: "To update your details, open Profile → Edit, make your changes and save. Some fields need HR approval before they change.",
			},
		},
	},
	"documents": {
		Emoji: "📄",
		Templates: map[string]Template{
			defaultKey: {
				Employee: "Your documents, including letters and certificates, are under Documents → My Documents.",
			},
			"request": {
				Employee: "To request a letter or certificate, go to Documents → Request, pick the document type and submit. HR usually responds within two working days.",
			},
		},
	},
	"approvals": {
		Emoji: "✅",
		Templates: map[string]Template{
			defaultKey: {
				Employee:   "Approvals are handled by your reporting manager. You can track your own requests under Leave → My Requests.",
				Management: "Requests waiting for your decision are under Approvals. Open a request to approve or reject it.",
			},
		},
	},
	"general": {
		Emoji: "💬",
		Templates: map[string]Template{
			defaultKey: {
				Employee: "I can help with leave, attendance, payslips, holidays, policies and your profile. What would you like to know?",
			},
			"dashboard": {Employee: "Your dashboard is the home screen. Click the logo in the top-left corner to get back to it."},
			"calendar":  {Employee: "The calendar is in the left-hand menu under Calendar."},
			"reports":   {Employee: "Reports are in the left-hand menu under Reports.", Management: "Team and organisation reports are in the left-hand menu under Reports."},
			"settings":  {Employee: "Settings are in the menu behind your profile picture in the top-right corner."},
			"logout":    {Employee: "To log out, open the menu behind your profile picture and choose Log Out."},
		},
	},
}

// DefaultBundles returns a copy of the built-in template bundles.
func DefaultBundles() map[string]Bundle {
	out := make(map[string]Bundle, len(defaultBundles))
	for intent, b := range defaultBundles {
		out[intent] = Bundle{Emoji: b.Emoji, Templates: maps.Clone(b.Templates)}
	}
	return out
}

// LoadBundles reads a YAML override file and merges it over the built-in
// bundles. Intents and subtypes in the file replace or extend the defaults.
func LoadBundles(path string) (map[string]Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read templates %s: %w", path, err)
	}

	var overrides map[string]Bundle
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("parse templates %s: %w", path, err)
	}

	bundles := DefaultBundles()
	for intent, override := range overrides {
		current, ok := bundles[intent]
		if !ok {
			current = Bundle{Templates: map[string]Template{}}
		}
		if override.Emoji != "" {
			current.Emoji = override.Emoji
		}
		maps.Copy(current.Templates, override.Templates)
		bundles[intent] = current
	}
	return bundles, nil
}
