package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "List journaled check-ins",
		Run:   runLog,
	}

	cmd.Flags().IntP("limit", "n", 20, "Max entries to show, 0 for all")

	RootCmd.AddCommand(cmd)
}

func runLog(cmd *cobra.Command, args []string) {
	a := newApp()

	j := a.openJournal()
	defer j.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	entries, err := j.List(cmd.Context(), limit)
	if err != nil {
		exitErr("log", err)
	}

	if len(entries) == 0 {
		fmt.Println("no check-ins yet")
		return
	}

	for _, e := range entries {
		mark := " "
		if e.Verified != nil {
			if *e.Verified {
				mark = "✓"
			} else {
				mark = "✗"
			}
		}
		text := e.Text
		if text == "" {
			text = "(no message)"
		}
		fmt.Printf("%s %s  %s\n    %s\n", mark, e.CreatedAt.Local().Format("2006-01-02 15:04"), text, e.Checkin.URI)
	}
}
