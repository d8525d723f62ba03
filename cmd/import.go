package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/algodrill/algodrill/internal/model"
)

var importCmd = &cobra.Command{
	Use:   "import <items.json>",
	Short: "Load practice items from a JSON file",
	Long: "Loads a JSON array of items into the catalog. Existing items with\n" +
		"the same id are replaced; learner progress is untouched.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read %s: %w", args[0], err)
		}

		var items []model.Item
		if err := json.Unmarshal(data, &items); err != nil {
			return fmt.Errorf("parse %s: %w", args[0], err)
		}
		for i, it := range items {
			if it.ID == "" || it.Pattern == "" {
				return fmt.Errorf("item %d: id and pattern are required", i)
			}
			if _, err := model.ParseItemType(string(it.Type)); err != nil {
				return fmt.Errorf("item %s: %w", it.ID, err)
			}
		}

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.PutItems(cmd.Context(), items); err != nil {
			return err
		}
		fmt.Printf("Imported %d item(s)\n", len(items))
		return nil
	},
}
