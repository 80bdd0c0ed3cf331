package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DifanaDAP/ai-reviewer/internal/config"
	"github.com/DifanaDAP/ai-reviewer/internal/model"
	"github.com/DifanaDAP/ai-reviewer/internal/report"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Review a pull request and post the result",
	Long: `Fetch the configured pull request, run every analyzer plus the AI
pass, and post the review. HIGH findings request changes; everything
else posts as a comment.

With --dry-run the review is printed to the terminal instead of posted.`,
	RunE: runReview,
}

func init() {
	reviewCmd.Flags().Bool("dry-run", false, "print the review instead of posting it")
	reviewCmd.Flags().Bool("markdown", false, "with --dry-run, print raw markdown instead of the styled report")
	reviewCmd.Flags().Int("pr", 0, "pull request number (overrides PR_NUMBER)")
}

func runReview(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	prNumber := cfg.PRNumber
	if n, _ := cmd.Flags().GetInt("pr"); n != 0 {
		prNumber = n
	}

	eng := buildEngine(cfg, prNumber)
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	if dryRun {
		result, _, err := eng.Review(cmd.Context())
		if err != nil {
			return err
		}
		if raw, _ := cmd.Flags().GetBool("markdown"); raw {
			fmt.Println(report.Markdown(result))
		} else {
			fmt.Print(report.Terminal(result))
		}
		return nil
	}

	result, err := eng.Run(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Printf("Review posted: %s\n", report.StatusLabel(result.OverallStatus()))
	fmt.Printf("🔴 %d HIGH | 🟡 %d MEDIUM | 🟢 %d LOW | 💭 %d NIT\n",
		result.CountBySeverity(model.SeverityHigh),
		result.CountBySeverity(model.SeverityMedium),
		result.CountBySeverity(model.SeverityLow),
		result.CountBySeverity(model.SeverityNit))
	return nil
}
