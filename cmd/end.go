package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/algodrill/algodrill/internal/session"
)

var endCmd = &cobra.Command{
	Use:   "end <session-id>",
	Short: "End a session and print its summary",
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

		cfg := session.DefaultConfig()
		builder := session.NewBuilder(st, st, st, cfg)
		mgr, err := session.Resume(cmd.Context(), builder, st, st, cfg, args[0], user)
		if err != nil {
			return err
		}

		sum, err := mgr.End(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("Session %s — %s\n", sum.SessionID, sum.Pattern)
		fmt.Printf("  Items served:  %d (planned %d)\n", sum.SizeCompleted, sum.SizePlanned)
		fmt.Printf("  Attempts:      %d\n", sum.TotalAttempts)
		fmt.Printf("  Accuracy:      %.0f%%\n", sum.Accuracy*100)
		if sum.AvgResponseMs > 0 {
			fmt.Printf("  Avg response:  %dms\n", sum.AvgResponseMs)
		}
		if sum.Duration > 0 {
			fmt.Printf("  Duration:      %s\n", sum.Duration.Round(time.Second))
		}
		return nil
	},
}
