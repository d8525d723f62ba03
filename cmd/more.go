package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/algodrill/algodrill/internal/session"
)

var moreCmd = &cobra.Command{
	Use:   "more <session-id>",
	Short: "Draw more items into an open session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		step, _ := cmd.Flags().GetInt("step")
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

		items, err := mgr.AddMore(cmd.Context(), step)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			fmt.Println("No more items: the pattern's pools are drained for now.")
			return nil
		}

		fmt.Printf("%d more item(s):\n\n", len(items))
		printItems(items)
		return nil
	},
}

func init() {
	moreCmd.Flags().Int("step", 4, "number of extra items to draw")
}
