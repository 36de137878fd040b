package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pable/go-tennis-features/internal/report"
	"github.com/pable/go-tennis-features/internal/storage"
)

var (
	cPrompt   = color.New(color.FgCyan, color.Bold)
	cMuted    = color.New(color.Faint)
	cError    = color.New(color.FgRed, color.Bold)
	cWarn     = color.New(color.FgYellow)
	cCmd      = color.New(color.FgYellow, color.Bold)
	cGreeting = color.New(color.Bold)
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive session against the dataset database",
	Long:  "Open a persistent session against the database. Type 'help' for available commands.",
	Args:  cobra.NoArgs,
	RunE:  runShell,
}

func runShell(_ *cobra.Command, _ []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	cGreeting.Println("tennisfeat shell")
	cMuted.Println("type 'help' or 'exit'")
	fmt.Println()
	shellLoop(db, os.Stdin, os.Stdout, os.Stderr)
	return nil
}

// shellLoop reads commands from in until exit or end of input.
func shellLoop(db *storage.DB, in io.Reader, out, errw io.Writer) {
	scanner := bufio.NewScanner(in)
	for {
		cPrompt.Fprint(out, "tennisfeat")
		cMuted.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		name, rest, _ := strings.Cut(line, " ")
		rest = strings.TrimSpace(rest)

		switch name {
		case "exit", "quit":
			return
		case "help":
			shellHelp(out)
		case "list":
			runs, err := db.ListRuns()
			if err != nil {
				cError.Fprintf(errw, "error: %v\n", err)
				continue
			}
			if len(runs) == 0 {
				cMuted.Fprintln(out, "No runs stored yet.")
				continue
			}
			report.PrintRunList(out, runs)
		case "summary":
			if rest == "" {
				cError.Fprintln(errw, "usage: summary <run-prefix>")
				continue
			}
			if err := printSummary(out, db, rest); err != nil {
				cError.Fprintf(errw, "error: %v\n", err)
			}
		case "sql":
			if rest == "" {
				cError.Fprintln(errw, "usage: sql <query>")
				continue
			}
			cols, rows, err := db.QueryRaw(rest)
			if err != nil {
				cError.Fprintf(errw, "error: %v\n", err)
				continue
			}
			report.PrintQueryTable(out, cols, rows)
		default:
			cWarn.Fprintf(errw, "unknown command %q, type 'help'\n", name)
		}
	}
}

func shellHelp(out io.Writer) {
	fmt.Fprintln(out)
	type entry struct{ cmd, desc string }
	rows := []entry{
		{"list", "list all stored runs"},
		{"summary <run-prefix>", "totals and breakdowns for one run"},
		{"sql <query>", "run a raw SQL query"},
		{"help", "show this message"},
		{"exit / quit", "close the session"},
	}
	for _, r := range rows {
		fmt.Fprint(out, "  ")
		cCmd.Fprintf(out, "%-24s", r.cmd)
		fmt.Fprintln(out, r.desc)
	}
	fmt.Fprintln(out)
}
