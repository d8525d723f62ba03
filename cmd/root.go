package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/algodrill/algodrill/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "algodrill",
	Short: "Spaced-repetition drills for coding-interview patterns",
	Long: "Algodrill schedules short practice sessions over coding-interview\n" +
		"patterns (two-pointers, sliding-window, ...) and spaces reviews so\n" +
		"material resurfaces just before it fades.",
	SilenceUsage: true,
}

func Execute() error {
	// A local .env is convenient for API keys; absence is fine.
	_ = godotenv.Load()
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "database path or DSN (overrides ALGODRILL_DB)")
	rootCmd.PersistentFlags().String("driver", "", "database driver: sqlite or postgres (overrides ALGODRILL_DB_DRIVER)")
	rootCmd.PersistentFlags().StringP("user", "u", "", "user id (overrides ALGODRILL_USER)")

	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(moreCmd)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(endCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(versionCmd)
}

// openStore resolves driver and DSN from flags, then env, then the
// default SQLite path under the XDG data dir.
func openStore(cmd *cobra.Command) (*store.SQL, error) {
	driver, _ := cmd.Flags().GetString("driver")
	if driver == "" {
		driver = os.Getenv("ALGODRILL_DB_DRIVER")
	}
	if driver == "" {
		driver = "sqlite"
	}

	dsn, _ := cmd.Flags().GetString("db")
	if dsn == "" {
		dsn = os.Getenv("ALGODRILL_DB")
	}
	if dsn == "" {
		if driver != "sqlite" {
			return nil, fmt.Errorf("driver %s needs --db or ALGODRILL_DB", driver)
		}
		var err error
		dsn, err = store.DefaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("resolve database path: %w", err)
		}
	} else if driver == "sqlite" {
		if err := store.EnsureDir(dsn); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	s, err := store.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}

// resolveUser returns the acting user id from --user or ALGODRILL_USER.
func resolveUser(cmd *cobra.Command) (string, error) {
	if u, _ := cmd.Flags().GetString("user"); u != "" {
		return u, nil
	}
	if u := os.Getenv("ALGODRILL_USER"); u != "" {
		return u, nil
	}
	return "", fmt.Errorf("no user id: pass --user or set ALGODRILL_USER")
}
