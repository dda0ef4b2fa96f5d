package cli

import (
	"github.com/spf13/cobra"

	"github.com/sdejongh/cpverify/pkg/verify"
)

// NewCheckCommand creates the check command
func NewCheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [flags] SOURCE... DESTINATION",
		Short: "Verify existing copies without copying",
		Long: `Resolve sources and destinations exactly as a copy would, then hash both
sides and report every file whose copy does not match. Nothing is written.`,
		Args: cobra.MinimumNArgs(2),
		RunE: runCheck,
	}

	// Reuse copy flags for checking
	addVerifyFlags(cmd)

	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	return runVerify(cmd, args, (*verify.Engine).Check)
}
