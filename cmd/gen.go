package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/algodrill/algodrill/internal/itemgen"
	"github.com/algodrill/algodrill/internal/llm"
	"github.com/algodrill/algodrill/internal/model"
	"github.com/algodrill/algodrill/internal/store"
)

var genCmd = &cobra.Command{
	Use:   "gen <pattern>",
	Short: "Generate practice items for a pattern with an LLM",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		typeName, _ := cmd.Flags().GetString("type")
		diffName, _ := cmd.Flags().GetString("difficulty")
		count, _ := cmd.Flags().GetInt("count")

		itemType, err := model.ParseItemType(typeName)
		if err != nil {
			return err
		}

		cfg := llm.ConfigFromEnv()
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("generation needs an LLM provider: %w", err)
		}
		provider, err := llm.NewProvider(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("build LLM provider: %w", err)
		}

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx := cmd.Context()
		pattern := args[0]

		existing, err := st.GetItemsByPattern(ctx, pattern, nil, store.ItemFilter{Types: []model.ItemType{itemType}})
		if err != nil {
			return fmt.Errorf("load existing items: %w", err)
		}
		prompts := make([]string, len(existing))
		for i, it := range existing {
			prompts[i] = it.Prompt
		}

		gen := itemgen.New(provider, itemgen.DefaultConfig())
		var items []model.Item
		rejects := 0
		for len(items) < count {
			item, err := gen.Generate(ctx, itemgen.GenerateInput{
				Pattern:         pattern,
				Type:            itemType,
				Difficulty:      model.Difficulty(diffName),
				ExistingPrompts: prompts,
			})
			if err != nil {
				var verr *itemgen.ValidationError
				if errors.As(err, &verr) && verr.Retryable && rejects < count*2 {
					rejects++
					fmt.Fprintf(os.Stderr, "rejected a generation (%v), retrying\n", verr)
					continue
				}
				return err
			}
			items = append(items, *item)
			prompts = append(prompts, item.Prompt)
		}

		if err := st.PutItems(ctx, items); err != nil {
			return err
		}
		fmt.Printf("Generated %d item(s) for %s:\n\n", len(items), pattern)
		printItems(items)
		return nil
	},
}

func init() {
	genCmd.Flags().String("type", "mcq", "item type: mcq, fitb, ordering, plan, or insight")
	genCmd.Flags().String("difficulty", "easy", "difficulty: easy, medium, or hard")
	genCmd.Flags().Int("count", 3, "number of items to generate")

	rootCmd.AddCommand(genCmd)
}
