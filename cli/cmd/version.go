package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/peondevelopments/aptrepo/cli/cmdcontext"
	"github.com/peondevelopments/aptrepo/cli/version"
)

var (
	showShort  bool
	needCommit bool
)

// NewVersionCmd creates a new version command.
func NewVersionCmd() *cobra.Command {
	var versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Show aptrepo version information",
		Run:   RunModuleFunc(internalVersionModule),
		Args:  cobra.NoArgs,
	}

	versionCmd.Flags().BoolVar(&showShort, "short", false, "Show version in short format")
	versionCmd.Flags().BoolVar(&needCommit, "commit", false, "Show commit")

	return versionCmd
}

// internalVersionModule is a default (internal) version module function.
func internalVersionModule(cmdCtx *cmdcontext.CmdCtx, args []string) error {
	fmt.Println(version.GetVersion(showShort, needCommit))
	return nil
}
