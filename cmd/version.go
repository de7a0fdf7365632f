package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dduksang/deploymon/internal/cmd"
	cmdopts "github.com/dduksang/deploymon/internal/cmd/options"
)

// NewVersionCmd creates the 'version' command.
func NewVersionCmd(_ *cmd.BaseCmd, _ ...cmdopts.CmdOption) (*cobra.Command, error) {
	return &cobra.Command{
		Use:   "version",
		Short: "Prints the version of deploymon",
		Args:  cobra.NoArgs,
		RunE: func(cobraCmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cobraCmd.OutOrStdout(), "%s %s\n", cmd.AppName(), cmd.Version())
			return err
		},
	}, nil
}
