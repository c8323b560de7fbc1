package cmd

import (
	"fmt"
	"sort"
	"strings"
	"syscall"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/peondevelopments/aptrepo/cli/cmdcontext"
	"github.com/peondevelopments/aptrepo/cli/formatter"
	"github.com/peondevelopments/aptrepo/cli/repo"
	"github.com/peondevelopments/aptrepo/cli/security"
	"github.com/peondevelopments/aptrepo/cli/util"
	"github.com/peondevelopments/aptrepo/cli/version"
)

var (
	repoPlatforms     []string
	repoComponents    []string
	repoArchitectures []string
	repoName          string
	repoDescription   string
	keyParams         security.KeyParams
	askPassphrase     bool
)

// NewRepoCmd creates the repo command group.
func NewRepoCmd() *cobra.Command {
	repoCmd := &cobra.Command{
		Use:   "repo",
		Short: "Manage the package repository",
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create the repository directory grid and Release documents",
		Run:   RunModuleFunc(internalRepoCreateModule),
		Args:  cobra.NoArgs,
	}
	createCmd.Flags().StringSliceVar(&repoPlatforms, "platforms", nil,
		"Distribution names")
	createCmd.Flags().StringSliceVar(&repoComponents, "components", nil,
		"Component names")
	createCmd.Flags().StringSliceVarP(&repoArchitectures, "architectures", "a", nil,
		"Architecture names")
	createCmd.Flags().StringVar(&repoName, "name", "", "Repository origin and label")
	createCmd.Flags().StringVar(&repoDescription, "description", "", "Repository description")

	deleteCmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete the repository",
		Run:   RunModuleFunc(internalRepoDeleteModule),
		Args:  cobra.NoArgs,
	}

	addCmd := &cobra.Command{
		Use:   "add <ARTIFACT>...",
		Short: "Add package artifacts and refresh indexes",
		Run:   RunModuleFunc(internalRepoAddModule),
		Args:  cobra.MinimumNArgs(1),
	}
	addCmd.Flags().StringSliceVarP(&repoArchitectures, "architectures", "a", nil,
		"Architectures to add the artifacts to, all if empty")

	removeCmd := &cobra.Command{
		Use:   "remove <NAME>...",
		Short: "Remove package artifacts by file or package name and refresh indexes",
		Run:   RunModuleFunc(internalRepoRemoveModule),
		Args:  cobra.MinimumNArgs(1),
	}
	removeCmd.Flags().StringSliceVarP(&repoArchitectures, "architectures", "a", nil,
		"Architectures to remove the artifacts from, all if empty")

	infoCmd := &cobra.Command{
		Use:   "info",
		Short: "List artifacts of repository leaves",
		Run:   RunModuleFunc(internalRepoInfoModule),
		Args:  cobra.NoArgs,
	}
	infoCmd.Flags().StringSliceVarP(&repoArchitectures, "architectures", "a", nil,
		"Architectures to list, all if empty")
	addTableFormatFlag(infoCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show the number and the size of stored artifacts",
		Run:   RunModuleFunc(internalRepoStatusModule),
		Args:  cobra.NoArgs,
	}
	addTableFormatFlag(statusCmd)

	keygenCmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a repository signing key with gpg",
		Run:   RunModuleFunc(internalRepoKeygenModule),
		Args:  cobra.NoArgs,
	}
	keygenCmd.Flags().StringVar(&keyParams.Name, "name", "", "Key owner name")
	keygenCmd.Flags().StringVar(&keyParams.Email, "email", "", "Key owner email")
	keygenCmd.Flags().StringVar(&keyParams.Comment, "comment", "", "Key comment")
	keygenCmd.Flags().StringVar(&keyParams.Expire, "expire", "0", "Key expiration")
	keygenCmd.Flags().StringVar(&keyParams.Passphrase, "passphrase", "", "Key passphrase")
	keygenCmd.Flags().BoolVar(&askPassphrase, "ask-passphrase", false,
		"Prompt for the key passphrase")

	repoCmd.AddCommand(createCmd, deleteCmd, addCmd, removeCmd, infoCmd, statusCmd, keygenCmd)
	return repoCmd
}

// configuredLayout returns the layout of repository options and flags.
func configuredLayout() *repo.Layout {
	l := &repo.Layout{
		Root:          cliOpts.Repo.Directory,
		TopLevel:      cliOpts.Repo.TopLevel,
		Platforms:     cliOpts.Repo.Platforms,
		Components:    cliOpts.Repo.Components,
		Architectures: cliOpts.Repo.Architectures,
		Name:          cliOpts.Repo.Name,
		Description:   cliOpts.Repo.Description,
	}
	if len(repoPlatforms) > 0 {
		l.Platforms = repoPlatforms
	}
	if len(repoComponents) > 0 {
		l.Components = repoComponents
	}
	if len(repoArchitectures) > 0 {
		l.Architectures = repoArchitectures
	}
	if repoName != "" {
		l.Name = repoName
	}
	if repoDescription != "" {
		l.Description = repoDescription
	}
	return l
}

// internalRepoCreateModule is a default repo create module.
func internalRepoCreateModule(cmdCtx *cmdcontext.CmdCtx, args []string) error {
	if err := ensureCliOpts(); err != nil {
		return err
	}
	return repo.Create(configuredLayout())
}

// internalRepoDeleteModule is a default repo delete module.
func internalRepoDeleteModule(cmdCtx *cmdcontext.CmdCtx, args []string) error {
	if err := ensureCliOpts(); err != nil {
		return err
	}
	return repo.Delete(&repo.Layout{
		Root:     cliOpts.Repo.Directory,
		TopLevel: cliOpts.Repo.TopLevel,
	})
}

// internalRepoAddModule is a default repo add module.
func internalRepoAddModule(cmdCtx *cmdcontext.CmdCtx, args []string) error {
	l, err := loadLayout()
	if err != nil {
		return err
	}
	modified, err := newCoordinator(l).Publish(l, args, repoArchitectures)
	if err != nil {
		return err
	}
	log.Infof("Added %d artifact(s) to %d leaf(s)", len(args), modified.Len())
	return nil
}

// internalRepoRemoveModule is a default repo remove module.
func internalRepoRemoveModule(cmdCtx *cmdcontext.CmdCtx, args []string) error {
	l, err := loadLayout()
	if err != nil {
		return err
	}
	result, err := newCoordinator(l).Withdraw(l, args, repoArchitectures)
	if err != nil {
		return err
	}
	log.Infof("Removed %d artifact(s) from %d leaf(s)", len(result.Removed),
		result.Modified.Len())
	return nil
}

// leafTitle returns the leaf path relative to dists.
func leafTitle(leaf repo.Leaf) string {
	return strings.Join([]string{leaf.Platform, leaf.Component, leaf.Arch}, "/")
}

// sortArtifacts orders artifacts by package name, then by version.
func sortArtifacts(artifacts []repo.Artifact) {
	sort.SliceStable(artifacts, func(i, j int) bool {
		a, b := artifacts[i], artifacts[j]
		if a.Package() != b.Package() {
			return a.Package() < b.Package()
		}
		return version.Compare(a.Version(), b.Version()) < 0
	})
}

// internalRepoInfoModule is a default repo info module.
func internalRepoInfoModule(cmdCtx *cmdcontext.CmdCtx, args []string) error {
	opts, err := tableOpts()
	if err != nil {
		return err
	}
	l, err := loadLayout()
	if err != nil {
		return err
	}
	contents, err := repo.List(l, repoArchitectures)
	if err != nil {
		return err
	}

	tbl := formatter.NewTable(opts, "LEAF", "PACKAGE", "VERSION", "FILE", "SIZE")
	for _, content := range contents {
		sortArtifacts(content.Artifacts)
		for _, artifact := range content.Artifacts {
			tbl.Append(leafTitle(content.Leaf), artifact.Package(), artifact.Version(),
				artifact.Name, humanize.Bytes(uint64(artifact.Size)))
		}
	}
	if tbl.Len() == 0 {
		log.Infof("Repository %s has no artifacts", l.Base())
		return nil
	}
	fmt.Print(tbl.Render())
	return nil
}

// internalRepoStatusModule is a default repo status module.
func internalRepoStatusModule(cmdCtx *cmdcontext.CmdCtx, args []string) error {
	opts, err := tableOpts()
	if err != nil {
		return err
	}
	l, err := loadLayout()
	if err != nil {
		return err
	}
	usage, err := repo.DiskUsage(l)
	if err != nil {
		return err
	}

	tbl := formatter.NewTable(opts, "REPOSITORY", "PLATFORMS", "COMPONENTS",
		"ARCHITECTURES", "ARTIFACTS", "SIZE")
	tbl.Append(l.Base(), strings.Join(l.Platforms, " "), strings.Join(l.Components, " "),
		strings.Join(l.Architectures, " "), usage.Count, humanize.Bytes(uint64(usage.Bytes)))
	fmt.Print(tbl.Render())
	return nil
}

// readPassphrase interactively prompts the user for the key passphrase.
func readPassphrase() (string, error) {
	if !term.IsTerminal(int(syscall.Stdin)) {
		return "", util.NewArgError("--ask-passphrase requires an interactive terminal")
	}
	fmt.Printf("Enter passphrase: ")
	bytePass, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println("")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(bytePass)), nil
}

// internalRepoKeygenModule is a default repo keygen module.
func internalRepoKeygenModule(cmdCtx *cmdcontext.CmdCtx, args []string) error {
	if err := ensureCliOpts(); err != nil {
		return err
	}
	params := keyParams
	if params.Name == "" {
		params.Name = cliOpts.Repo.Name
	}
	if askPassphrase {
		passphrase, err := readPassphrase()
		if err != nil {
			return err
		}
		params.Passphrase = passphrase
	}
	if err := util.CheckRequiredBinaries(cliOpts.Tools.Gpg); err != nil {
		return err
	}
	return security.GenerateKey(newRunner(), cliOpts.Tools.Gpg, params)
}
