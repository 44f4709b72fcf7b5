package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Sign out and delete the stored credential",
		Run:   runLogout,
	}

	RootCmd.AddCommand(cmd)
}

func runLogout(cmd *cobra.Command, args []string) {
	a := newApp()

	if err := a.sessions.SignOut(cmd.Context()); err != nil {
		exitErr("logout", err)
	}
	fmt.Println("signed out")
}
