package cmd

import (
	"github.com/spf13/cobra"

	"github.com/peondevelopments/aptrepo/cli/cmdcontext"
	"github.com/peondevelopments/aptrepo/cli/configure"
	"github.com/peondevelopments/aptrepo/cli/formatter"
	"github.com/peondevelopments/aptrepo/cli/index"
	"github.com/peondevelopments/aptrepo/cli/pack"
	"github.com/peondevelopments/aptrepo/cli/repo"
	"github.com/peondevelopments/aptrepo/cli/util"
)

// tableFormat is the output table dialect name.
var tableFormat string

// RunModuleFunc wraps a module function into a cobra run function.
func RunModuleFunc(internalModule func(*cmdcontext.CmdCtx, []string) error) func(
	cmd *cobra.Command, args []string) {
	return func(cmd *cobra.Command, args []string) {
		cmdCtx.CommandName = cmd.Name()
		util.HandleCmdErr(cmd, internalModule(&cmdCtx, args))
	}
}

// ensureCliOpts loads options when commands run without InitRoot.
func ensureCliOpts() error {
	if cliOpts != nil {
		return nil
	}
	var err error
	cliOpts, err = configure.GetCliOpts(cmdCtx.Cli.ConfigPath)
	return err
}

// addTableFormatFlag adds the output format flag.
func addTableFormatFlag(cmd *cobra.Command) {
	cmd.Flags().StringVar(&tableFormat, "format", string(formatter.DefaultDialect),
		"Table format: default, plain, markdown or jira")
}

// tableOpts returns formatting options of the format flag.
func tableOpts() (formatter.Opts, error) {
	dialect, err := formatter.ParseDialect(tableFormat)
	if err != nil {
		return formatter.Opts{}, util.NewArgError(err.Error())
	}
	return formatter.Opts{Dialect: dialect}, nil
}

// newRunner returns the runner of external programs.
func newRunner() util.Runner {
	return util.ExecRunner{ShowOutput: cliOpts.Build.ShowOutput}
}

// loadLayout loads the persisted layout of the configured repository.
func loadLayout() (*repo.Layout, error) {
	if err := ensureCliOpts(); err != nil {
		return nil, err
	}
	return repo.Load(cliOpts.Repo.Directory, cliOpts.Repo.TopLevel)
}

// newCoordinator creates an index coordinator backed by dpkg-scanpackages.
func newCoordinator(l *repo.Layout) *index.Coordinator {
	return index.NewCoordinator(
		index.NewDpkgScanner(l.Base(), cliOpts.Tools.DpkgScanpackages, newRunner()))
}

// newBuildTools returns package builder tools. Configured programs replace
// the default ones.
func newBuildTools() pack.Tools {
	tools := pack.DefaultTools()
	if cliOpts.Tools.DpkgDeb != "" {
		tools.DpkgDeb = cliOpts.Tools.DpkgDeb
	}
	if cliOpts.Tools.Ar != "" {
		tools.Ar = cliOpts.Tools.Ar
	}
	tools.Runner = newRunner()
	return tools
}
