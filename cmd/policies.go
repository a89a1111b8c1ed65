package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/bgdnvk/hrassist/internal/policy"
)

var policiesCmd = &cobra.Command{
	Use:   "policies",
	Short: "Show which policy document answers each topic",
	Long: `List the topic to document mapping used for policy questions. With a
source that can list directories (github), missing documents are flagged.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd.Context(), buildOptions{withoutLearning: true})
		if err != nil {
			return err
		}
		defer a.Close()

		out := cmd.OutOrStdout()
		if a.library == nil {
			fmt.Fprintln(out, "No policy source configured (policy.source is none).")
			return nil
		}

		statuses, err := a.library.Check(cmd.Context())
		if err != nil {
			return err
		}
		if missing := printPolicyStatus(out, a.cfg.Policy.Source, statuses); missing > 0 {
			return fmt.Errorf("%d policy document(s) missing", missing)
		}
		return nil
	},
}

func printPolicyStatus(out io.Writer, source string, statuses []policy.PathStatus) int {
	fmt.Fprintf(out, "Policy documents (%s):\n\n", source)
	missing := 0
	for _, st := range statuses {
		mark := "  "
		switch {
		case !st.Checked:
		case st.Found:
			mark = "✅"
		default:
			mark = "❌"
			missing++
		}
		fmt.Fprintf(out, "%s %-12s %s\n", mark, st.Topic, st.Path)
	}
	return missing
}

func init() {
	rootCmd.AddCommand(policiesCmd)
}
