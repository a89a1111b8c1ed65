package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bgdnvk/hrassist/internal/agent"
	"github.com/bgdnvk/hrassist/internal/agent/intent"
	"github.com/bgdnvk/hrassist/internal/agent/semantic"
)

const cliUserID = "cli"

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask the HR assistant a question",
	Long: `Ask the HR assistant a question from the terminal.

Examples:
  hrassist ask "What is my leave balance?"
  hrassist ask --role hr "show pending approvals"
  hrassist ask --interactive`,
	RunE: func(cmd *cobra.Command, args []string) error {
		role, _ := cmd.Flags().GetString("role")
		userID, _ := cmd.Flags().GetString("user")
		verbose, _ := cmd.Flags().GetBool("verbose")
		asJSON, _ := cmd.Flags().GetBool("json")
		interactive, _ := cmd.Flags().GetBool("interactive")
		noLearning, _ := cmd.Flags().GetBool("no-learning")
		debug := viper.GetBool("debug")

		if !interactive && len(args) == 0 {
			return fmt.Errorf("a question is required unless --interactive is set")
		}

		ctx := cmd.Context()
		a, err := buildApp(ctx, buildOptions{withoutLearning: noLearning})
		if err != nil {
			return err
		}
		defer a.Close()

		if debug {
			fmt.Printf("🔧 session backend: %s, learning: %t\n", a.cfg.Session.Backend, a.repo != nil)
		}

		out := cmd.OutOrStdout()
		if !interactive {
			question := strings.Join(args, " ")
			res := a.engine.Ask(ctx, agent.Request{Question: question, UserID: userID, Role: role})
			return printResult(out, res, verbose || debug, asJSON)
		}

		fmt.Fprintln(out, "💬 hrassist interactive mode. Type 'exit' to quit.")
		return runInteractive(ctx, a.engine, cmd.InOrStdin(), out, userID, role, verbose || debug)
	},
}

var explainCmd = &cobra.Command{
	Use:   "explain [question]",
	Short: "Show how a question is normalized and scored",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		explainScores(cmd.OutOrStdout(), strings.Join(args, " "))
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(explainCmd)

	askCmd.Flags().String("role", "employee", "portal role of the asker (employee, hr, admin, superadmin, ceo)")
	askCmd.Flags().String("user", cliUserID, "user id used to keep conversation state")
	askCmd.Flags().BoolP("verbose", "v", false, "show the reasoning chain and classifier scores")
	askCmd.Flags().Bool("json", false, "print the full result as JSON")
	askCmd.Flags().BoolP("interactive", "i", false, "read questions from stdin until EOF or 'exit'")
	askCmd.Flags().Bool("no-learning", false, "do not open the learning database")
}

func runInteractive(ctx context.Context, engine *agent.Engine, in io.Reader, out io.Writer, userID, role string, verbose bool) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "exit" || line == "quit" {
			return nil
		}
		if line == "" {
			continue
		}
		res := engine.Ask(ctx, agent.Request{Question: line, UserID: userID, Role: role})
		if err := printResult(out, res, verbose, false); err != nil {
			return err
		}
	}
}

func printResult(out io.Writer, res agent.Result, verbose, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	fmt.Fprintln(out, res.Answer.Text)
	if res.Answer.Link != nil {
		fmt.Fprintf(out, "🔗 %s\n", *res.Answer.Link)
	}
	if !verbose {
		return nil
	}

	fmt.Fprintf(out, "\n🎯 intent=%s subtype=%s confidence=%.2f tier=%s route=%s source=%s\n",
		res.Match.Intent, res.Match.Subtype, res.Match.Confidence, res.Tier, res.Route, res.Match.Source)
	if res.Learned || res.Similarity > 0 {
		fmt.Fprintf(out, "🧠 learned=%t similarity=%.2f\n", res.Learned, res.Similarity)
	}
	fmt.Fprintf(out, "🏷️  labels: %s\n", strings.Join(res.Labels, ", "))
	agent.DisplayChainOfThought(out, res)
	return nil
}

// explainScores prints the raw classifier table for a question.
func explainScores(out io.Writer, question string) {
	fs := semantic.NewAnalyzer().Extract(question)
	m := intent.NewMatcher()
	if match, ok := intent.MatchAnchor(fs.Q, intent.DefaultAnchors); ok {
		fmt.Fprintf(out, "anchor: %s/%s %.2f\n", match.Intent, match.Subtype, match.Confidence)
	}
	fmt.Fprintf(out, "normalized: %q\n", fs.Q)
	for _, s := range m.Scores(fs) {
		fmt.Fprintf(out, "  %-12s %-12s %.3f\n", s.Intent, s.Subtype, s.Value)
	}
}
