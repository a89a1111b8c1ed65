package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/bgdnvk/hrassist/internal/agent/learning"
)

var learningCmd = &cobra.Command{
	Use:   "learning",
	Short: "Maintain the learned question table",
}

var learningMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the learning table if it does not exist",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd.Context(), buildOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		fmt.Fprintf(cmd.OutOrStdout(), "✅ learning table ready (%s)\n", a.cfg.Database.Driver)
		return nil
	},
}

var learningTopCmd = &cobra.Command{
	Use:   "top",
	Short: "List the most frequently asked questions",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := buildApp(cmd.Context(), buildOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		records, err := a.repo.Top(cmd.Context(), limit)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(records) == 0 {
			fmt.Fprintln(out, "No learned questions yet.")
			return nil
		}
		for i, rec := range records {
			fmt.Fprintf(out, "%2d. [%dx] %s\n", i+1, rec.Frequency, rec.Question)
			fmt.Fprintf(out, "    intent=%s confidence=%.2f last asked %s\n",
				rec.IntentCategory, rec.ConfidenceScore, rec.LastAsked.Format(time.RFC3339))
		}
		return nil
	},
}

var learningForgetCmd = &cobra.Command{
	Use:   "forget [question]",
	Short: "Delete a learned question",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		question := strings.Join(args, " ")

		a, err := buildApp(cmd.Context(), buildOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.repo.Forget(cmd.Context(), question); err != nil {
			if errors.Is(err, learning.ErrNotFound) {
				fmt.Fprintf(cmd.OutOrStdout(), "Nothing learned for %q\n", learning.NormalizeQuestion(question))
				return nil
			}
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "🗑️  forgot %q\n", learning.NormalizeQuestion(question))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(learningCmd)
	learningCmd.AddCommand(learningMigrateCmd, learningTopCmd, learningForgetCmd)

	learningTopCmd.Flags().Int("limit", 20, "number of questions to list")
}
