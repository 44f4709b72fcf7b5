package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		Long:  "Show the stored session and confirm it is still accepted server-side.",
		Run:   runWhoami,
	}

	RootCmd.AddCommand(cmd)
}

func runWhoami(cmd *cobra.Command, args []string) {
	a := newApp()

	if err := a.sessions.Validate(cmd.Context()); err != nil {
		exitErr("whoami", err)
	}

	cred := a.sessions.Current()
	fmt.Printf("%s (%s)\n", cred.Handle, cred.DID)
	fmt.Printf("session: %s, token expires %s\n", a.sessions.State(), cred.Expiry.Local().Format("2006-01-02 15:04"))
}
