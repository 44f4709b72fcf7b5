package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	anchor "github.com/dropanchor/anchor-go"
)

func init() {
	cmd := &cobra.Command{
		Use:   "verify [checkin-uri]",
		Short: "Check that referenced location records are untampered",
		Long:  "Re-fetch the address behind a check-in and compare its content hash against the one captured at write time. With --all, verify every journaled check-in.",
		Run:   runVerify,
	}

	cmd.Flags().Bool("all", false, "Verify every journal entry")

	RootCmd.AddCommand(cmd)
}

func runVerify(cmd *cobra.Command, args []string) {
	a := newApp()

	j := a.openJournal()
	defer j.Close()
	uc := a.verifier(j)

	if all, _ := cmd.Flags().GetBool("all"); all {
		outcomes, err := uc.VerifyAll(cmd.Context())
		if err != nil {
			exitErr("verify", err)
		}

		failed := 0
		for _, o := range outcomes {
			switch {
			case o.Err != nil:
				failed++
				fmt.Printf("✗ %s: %v\n", o.Entry.Checkin.URI, o.Err)
			case !o.Verified:
				failed++
				fmt.Printf("✗ %s: address record changed since check-in\n", o.Entry.Checkin.URI)
			default:
				fmt.Printf("✓ %s\n", o.Entry.Checkin.URI)
			}
		}
		fmt.Printf("%d verified, %d failed\n", len(outcomes)-failed, failed)
		return
	}

	if len(args) != 1 {
		exitErr("verify", fmt.Errorf("a check-in URI is required (or use --all)"))
	}

	entry, err := j.Get(cmd.Context(), args[0])
	if err != nil {
		exitErr("verify", err)
	}

	resolved, err := uc.Resolve(cmd.Context(), anchor.StrongRef{URI: entry.Checkin.URI, CID: entry.Checkin.CID})
	if err != nil {
		exitErr("verify", err)
	}

	if resolved.IsVerified {
		fmt.Printf("✓ %s at %s is intact\n", entry.Checkin.URI, resolved.Address.Name)
	} else {
		fmt.Printf("✗ %s: address record changed since check-in\n", entry.Checkin.URI)
	}
}
