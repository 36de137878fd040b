package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var dropForce bool

// dropCmd deletes one stored run, or the whole database.
var dropCmd = &cobra.Command{
	Use:   "drop [run-prefix]",
	Short: "Delete a stored run or the whole database",
	Long: `With a run id prefix, delete that run and its rows. Without one, permanently delete
the SQLite database; all stored runs are lost. Output files written by 'build' are kept.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDrop,
}

func init() {
	dropCmd.Flags().BoolVarP(&dropForce, "force", "f", false, "skip confirmation prompt")
}

func runDrop(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		return dropRun(args[0])
	}
	if !dropForce {
		fmt.Fprintf(os.Stderr, "This will permanently delete: %s\n", cfg.DBPath)
		fmt.Fprintf(os.Stderr, "Re-run with --force to confirm.\n")
		return nil
	}
	if err := os.Remove(cfg.DBPath); err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintln(os.Stdout, "Database does not exist, nothing to drop.")
			return nil
		}
		return fmt.Errorf("remove database: %w", err)
	}
	// WAL side files.
	os.Remove(cfg.DBPath + "-wal")
	os.Remove(cfg.DBPath + "-shm")
	fmt.Fprintf(os.Stdout, "Deleted: %s\n", cfg.DBPath)
	return nil
}

func dropRun(prefix string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	run, err := db.GetRunByPrefix(prefix)
	if err != nil {
		return fmt.Errorf("get run: %w", err)
	}
	if run == nil {
		return fmt.Errorf("no run with id prefix %q", prefix)
	}
	if !dropForce {
		fmt.Fprintf(os.Stderr, "This will delete run %s (%d rows).\n", run.ID, run.Rows)
		fmt.Fprintf(os.Stderr, "Re-run with --force to confirm.\n")
		return nil
	}
	if err := db.DeleteRun(run.ID); err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	fmt.Fprintf(os.Stdout, "Deleted run %s\n", run.ID)
	return nil
}
