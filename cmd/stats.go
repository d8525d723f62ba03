package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/algodrill/algodrill/internal/mastery"
)

var statsCmd = &cobra.Command{
	Use:   "stats <pattern>",
	Short: "Show progress for a pattern",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := resolveUser(cmd)
		if err != nil {
			return err
		}

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx := cmd.Context()
		pattern := args[0]

		acc, err := mastery.NewEstimator(st).RollingAccuracy(ctx, user, pattern)
		if err != nil {
			return fmt.Errorf("rolling accuracy: %w", err)
		}
		due, err := st.FindDueItems(ctx, user, pattern, time.Now(), nil)
		if err != nil {
			return fmt.Errorf("due items: %w", err)
		}
		fresh, err := st.FindItemsWithoutProgress(ctx, user, pattern, nil)
		if err != nil {
			return fmt.Errorf("unseen items: %w", err)
		}

		fmt.Printf("%s\n", pattern)
		fmt.Printf("  Rolling accuracy: %.0f%% (last %d sessions)\n", acc*100, mastery.SessionWindow)
		if acc >= mastery.MasteryThreshold {
			fmt.Println("  Mix: mastery (weighted toward medium/hard)")
		} else {
			fmt.Println("  Mix: default (weighted toward easy/medium)")
		}
		fmt.Printf("  Due for review:   %d\n", len(due))
		fmt.Printf("  Never practiced:  %d\n", len(fresh))

		sessions, err := st.FindRecentSessions(ctx, user, pattern, mastery.SessionWindow)
		if err != nil {
			return fmt.Errorf("recent sessions: %w", err)
		}
		if len(sessions) == 0 {
			return nil
		}

		fmt.Println("\n  Recent sessions:")
		for _, s := range sessions {
			state := "open"
			if s.Ended() {
				state = fmt.Sprintf("%.0f%% over %d item(s)", s.Accuracy*100, s.SizeCompleted)
			}
			fmt.Printf("    %s  %s  %s\n", s.StartedAt.Format("2006-01-02 15:04"), s.ID, state)
		}
		return nil
	},
}
