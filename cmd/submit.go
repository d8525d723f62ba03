package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/algodrill/algodrill/internal/attempt"
	"github.com/algodrill/algodrill/internal/grading"
	"github.com/algodrill/algodrill/internal/llm"
	"github.com/algodrill/algodrill/internal/model"
)

var submitCmd = &cobra.Command{
	Use:   "submit <item-id>",
	Short: "Record an attempt against an item",
	Long: "Records one attempt: a self-grade (1 too easy, 3 got it, 5 confusing)\n" +
		"plus an optional structured response payload for auto-evaluation.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		grade, _ := cmd.Flags().GetInt("grade")
		response, _ := cmd.Flags().GetString("response")
		feedback, _ := cmd.Flags().GetString("feedback")
		timeMs, _ := cmd.Flags().GetInt("time-ms")
		timedOut, _ := cmd.Flags().GetBool("timed-out")
		idleMs, _ := cmd.Flags().GetInt("idle-ms")

		user, err := resolveUser(cmd)
		if err != nil {
			return err
		}

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		pipeline := attempt.NewPipeline(st, st, st, newRegistry(cmd), attempt.TimeoutPolicy{})
		res, err := pipeline.Submit(cmd.Context(), attempt.SubmitInput{
			UserID:   user,
			ItemID:   args[0],
			Grade:    model.Grade(grade),
			Feedback: feedback,
			Response: rawOrNil(response),
			TimeMs:   timeMs,
			TimedOut: timedOut,
			Idle:     time.Duration(idleMs) * time.Millisecond,
		})
		if err != nil {
			return err
		}

		fmt.Printf("Recorded attempt %s (grade %d)\n", res.AttemptID, res.Grade)
		if res.Correct != nil {
			verdict := "incorrect"
			if *res.Correct {
				verdict = "correct"
			}
			fmt.Printf("Evaluation: %s (%s)\n", verdict, res.Method)
		}
		if res.NextDue != nil {
			fmt.Printf("Next review: %s\n", res.NextDue.Format("2006-01-02"))
		}
		return nil
	},
}

func init() {
	submitCmd.Flags().Int("grade", 0, "self-grade: 1 too easy, 3 got it, 5 confusing")
	submitCmd.Flags().String("response", "", "structured response payload (JSON)")
	submitCmd.Flags().String("feedback", "", "free-form note about the attempt")
	submitCmd.Flags().Int("time-ms", 0, "response time in milliseconds")
	submitCmd.Flags().Bool("timed-out", false, "the item's timer expired")
	submitCmd.Flags().Int("idle-ms", 0, "idle span before the timer expired")
	submitCmd.MarkFlagRequired("grade")
}

// newRegistry builds the evaluator registry. Plan items score via the
// configured LLM provider; without one they fall back to the keyword
// heuristic.
func newRegistry(cmd *cobra.Command) *grading.Registry {
	cfg := llm.ConfigFromEnv()
	if err := cfg.Validate(); err != nil {
		return grading.NewRegistry(nil)
	}
	provider, err := llm.NewProvider(cmd.Context(), cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "LLM provider not configured:", err)
		fmt.Fprintln(os.Stderr, "Plan answers will be scored heuristically.")
		return grading.NewRegistry(nil)
	}
	return grading.NewRegistry(grading.NewPlanScorer(provider, grading.DefaultPlanConfig()))
}

func rawOrNil(s string) json.RawMessage {
	if s == "" {
		return nil
	}
	return json.RawMessage(s)
}
