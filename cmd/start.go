package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/algodrill/algodrill/internal/model"
	"github.com/algodrill/algodrill/internal/session"
)

var startCmd = &cobra.Command{
	Use:   "start <pattern>",
	Short: "Start a practice session for a pattern",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		size, _ := cmd.Flags().GetInt("size")
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
		mgr := session.NewManager(builder, st, st, cfg)

		id, items, err := mgr.Start(cmd.Context(), user, args[0], size)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			fmt.Println("Nothing to practice: import items for this pattern first.")
			return nil
		}

		fmt.Printf("Session %s — %s, %d item(s)\n\n", id, args[0], len(items))
		printItems(items)
		fmt.Printf("\nSubmit with: algodrill submit <item-id> --grade {1|3|5}\n")
		fmt.Printf("End with:    algodrill end %s\n", id)
		return nil
	},
}

func init() {
	startCmd.Flags().Int("size", 8, "number of items to draw")
}

func printItems(items []model.Item) {
	for i, it := range items {
		label := string(it.Type)
		if it.Type == model.TypeInsight {
			label = "insight (ungraded)"
		} else {
			label = fmt.Sprintf("%s, %s", it.Type, it.Difficulty)
		}
		fmt.Printf("%2d. [%s] %s\n    %s\n", i+1, label, it.ID, it.Prompt)
	}
}
