package cmd

import (
	"os"

	"github.com/apex/log"
	"github.com/spf13/cobra"

	"github.com/peondevelopments/aptrepo/cli/aptlog"
	"github.com/peondevelopments/aptrepo/cli/cmdcontext"
	"github.com/peondevelopments/aptrepo/cli/config"
	"github.com/peondevelopments/aptrepo/cli/configure"
)

var (
	cmdCtx  cmdcontext.CmdCtx
	cliOpts *config.CliOpts
	rootCmd *cobra.Command
	logger  *aptlog.Logger
)

// NewCmdRoot creates a new root command.
func NewCmdRoot() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "aptrepo",
		Short: "Package repository maintenance tool",
		Long: "Utility for building deb, ipk, opk and tar.gz packages from package " +
			"descriptors and maintaining apt repositories",
		Example: `$ aptrepo repo create --platforms stable --components main
  $ aptrepo pkg create foo -f version=1.0 -f architecture=amd64
  $ aptrepo pkg build foo --publish`,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&cmdCtx.Cli.ConfigPath, "cfg", "c",
		"", "Path to configuration file")
	rootCmd.PersistentFlags().BoolVarP(&cmdCtx.Cli.Verbose, "verbose", "V",
		false, "Enable debug log output")
	rootCmd.PersistentFlags().StringVar(&cmdCtx.Cli.LogFile, "log-file",
		"", "Write JSON log entries to the file")

	rootCmd.AddCommand(
		NewVersionCmd(),
		NewCompletionCmd(),
		NewRepoCmd(),
		NewPkgCmd(),
	)
	rootCmd.InitDefaultHelpCmd()

	return rootCmd
}

// Execute root command.
func Execute() {
	err := rootCmd.Execute()
	if logger != nil {
		logger.Close()
	}
	if err != nil {
		log.Fatalf(err.Error())
	}
}

// setupLogger installs the console handler and the log file handler, if
// a log file is configured.
func setupLogger() {
	opts := aptlog.LoggerOpts{Verbose: cmdCtx.Cli.Verbose}
	if cliOpts != nil && cliOpts.Log != nil {
		opts.Filename = cliOpts.Log.File
		opts.MaxSize = cliOpts.Log.MaxSize
		opts.MaxBackups = cliOpts.Log.MaxBackups
		opts.MaxAge = cliOpts.Log.MaxAge
	}
	if cmdCtx.Cli.LogFile != "" {
		opts.Filename = cmdCtx.Cli.LogFile
	}
	logger = aptlog.NewLogger(opts, os.Stderr)
	logger.Setup()
}

// InitRoot initializes global flags, configures CLI and the logger.
func InitRoot() {
	rootCmd = NewCmdRoot()
	rootCmd.ParseFlags(os.Args)
	setupLogger()

	if err := configure.Cli(&cmdCtx); err != nil {
		log.Fatalf("Failed to configure aptrepo: %s", err)
	}

	var err error
	cliOpts, err = configure.GetCliOpts(cmdCtx.Cli.ConfigPath)
	if err != nil {
		log.Fatalf("Failed to get aptrepo configuration: %s", err)
	}
	if cliOpts.Log.File != "" || cmdCtx.Cli.LogFile != "" {
		setupLogger()
	}
}
