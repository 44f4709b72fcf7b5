package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	anchor "github.com/dropanchor/anchor-go"
)

func init() {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with a handle and app password",
		Long:  "Sign in to your PDS. The app password can come from --app-password, $ANCHOR_APP_PASSWORD, or an interactive prompt.",
		Run:   runLogin,
	}

	cmd.Flags().String("handle", "", "Account handle, e.g. alice.bsky.social")
	cmd.Flags().String("app-password", "", "App password (prefer $ANCHOR_APP_PASSWORD)")

	RootCmd.AddCommand(cmd)
}

func runLogin(cmd *cobra.Command, args []string) {
	a := newApp()

	handle, _ := cmd.Flags().GetString("handle")
	if handle == "" {
		handle = a.cfg.Account.Handle
	}
	if handle == "" {
		exitErr("login", fmt.Errorf("handle is required (--handle or config)"))
	}
	if !anchor.IsDID(handle) && !anchor.IsValidHandle(handle) {
		exitErr("login", fmt.Errorf("%q is not a valid handle", handle))
	}

	password, _ := cmd.Flags().GetString("app-password")
	if password == "" {
		password = os.Getenv("ANCHOR_APP_PASSWORD")
	}
	if password == "" && term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprintf(os.Stderr, "app password for %s: ", handle)
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			exitErr("read password", err)
		}
		password = string(raw)
	}
	if password == "" {
		exitErr("login", fmt.Errorf("app password is required"))
	}

	cred, err := a.sessions.SignIn(cmd.Context(), handle, password)
	if err != nil {
		exitErr("login", err)
	}

	fmt.Printf("signed in as %s (%s)\n", cred.Handle, cred.DID)
}
