package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/apex/log"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/peondevelopments/aptrepo/cli/arch"
	"github.com/peondevelopments/aptrepo/cli/cmdcontext"
	"github.com/peondevelopments/aptrepo/cli/descriptor"
	"github.com/peondevelopments/aptrepo/cli/formatter"
	"github.com/peondevelopments/aptrepo/cli/pack"
	"github.com/peondevelopments/aptrepo/cli/repo"
	"github.com/peondevelopments/aptrepo/cli/util"
	"github.com/peondevelopments/aptrepo/cli/version"
)

var (
	pkgFields        []string
	pkgOutputDir     string
	pkgPublish       bool
	pkgArchitectures []string
)

// NewPkgCmd creates the pkg command group.
func NewPkgCmd() *cobra.Command {
	pkgCmd := &cobra.Command{
		Use:   "pkg",
		Short: "Manage package descriptors and build packages",
	}

	fieldsUsage := "Descriptor field as key=value, e.g. version=1.0. Known keys: " +
		strings.Join(descriptor.FieldNames(), ", ")

	createCmd := &cobra.Command{
		Use:   "create <NAME>",
		Short: "Create a package descriptor",
		Run:   RunModuleFunc(internalPkgCreateModule),
		Args:  cobra.ExactArgs(1),
	}
	createCmd.Flags().StringArrayVarP(&pkgFields, "field", "f", nil, fieldsUsage)

	updateCmd := &cobra.Command{
		Use:   "update <NAME>",
		Short: "Update fields of a package descriptor",
		Run:   RunModuleFunc(internalPkgUpdateModule),
		Args:  cobra.ExactArgs(1),
	}
	updateCmd.Flags().StringArrayVarP(&pkgFields, "field", "f", nil, fieldsUsage)

	buildCmd := &cobra.Command{
		Use:   "build <NAME>",
		Short: "Build package artifacts of every build profile",
		Run:   RunModuleFunc(internalPkgBuildModule),
		Args:  cobra.ExactArgs(1),
	}
	buildCmd.Flags().StringVarP(&pkgOutputDir, "output", "o", "",
		"Directory for built artifacts")
	buildCmd.Flags().BoolVar(&pkgPublish, "publish", false,
		"Add built artifacts to the repository")
	buildCmd.Flags().StringSliceVarP(&pkgArchitectures, "architectures", "a", nil,
		"Repository architectures to publish to, package architectures if empty")

	validCmd := &cobra.Command{
		Use:   "valid <NAME>",
		Short: "Validate a package descriptor",
		Run:   RunModuleFunc(internalPkgValidModule),
		Args:  cobra.ExactArgs(1),
	}

	infoCmd := &cobra.Command{
		Use:   "info <NAME>",
		Short: "Show a package descriptor",
		Run:   RunModuleFunc(internalPkgInfoModule),
		Args:  cobra.ExactArgs(1),
	}
	addTableFormatFlag(infoCmd)

	deleteCmd := &cobra.Command{
		Use:   "delete <NAME>",
		Short: "Delete a package directory",
		Run:   RunModuleFunc(internalPkgDeleteModule),
		Args:  cobra.ExactArgs(1),
	}

	bumpCmd := &cobra.Command{
		Use:   "bump <NAME>",
		Short: "Increment the package version",
		Run:   RunModuleFunc(internalPkgBumpModule),
		Args:  cobra.ExactArgs(1),
	}

	pkgCmd.AddCommand(createCmd, updateCmd, buildCmd, validCmd, infoCmd, deleteCmd, bumpCmd)
	return pkgCmd
}

// parseFields parses key=value arguments.
func parseFields(args []string) (descriptor.Fields, error) {
	fields := descriptor.Fields{}
	for _, arg := range args {
		key, value, found := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		if !found || key == "" {
			return nil, util.NewArgError(fmt.Sprintf("invalid field %q, expected key=value", arg))
		}
		fields[key] = value
	}
	return fields, nil
}

// readExisting reads the descriptor of a package which must exist.
func readExisting(name string) (*descriptor.Descriptor, error) {
	if err := ensureCliOpts(); err != nil {
		return nil, err
	}
	if !descriptor.Exists(cliOpts.Package.Directory, name) {
		return nil, util.NewNotFoundError("package descriptor",
			descriptor.DocumentPath(cliOpts.Package.Directory, name))
	}
	return descriptor.Read(cliOpts.Package.Directory, name)
}

// internalPkgCreateModule is a default pkg create module.
func internalPkgCreateModule(cmdCtx *cmdcontext.CmdCtx, args []string) error {
	if err := ensureCliOpts(); err != nil {
		return err
	}
	fields, err := parseFields(pkgFields)
	if err != nil {
		return err
	}
	if _, found := fields["maintainer"]; !found && len(cliOpts.Package.Maintainer) > 0 {
		fields["maintainer"] = strings.Join(cliOpts.Package.Maintainer, ", ")
	}

	d, err := descriptor.New(cliOpts.Package.Directory, args[0], fields)
	if err != nil {
		return err
	}
	if err := d.Write(); err != nil {
		return err
	}
	log.Infof("Package descriptor is written to %s", d.DocumentPath())
	return nil
}

// internalPkgUpdateModule is a default pkg update module.
func internalPkgUpdateModule(cmdCtx *cmdcontext.CmdCtx, args []string) error {
	fields, err := parseFields(pkgFields)
	if err != nil {
		return err
	}
	d, err := readExisting(args[0])
	if err != nil {
		return err
	}
	applied, err := d.Update(fields)
	if err != nil {
		return err
	}
	if len(applied) < len(fields) {
		log.Warnf("Only %d of %d field(s) are known and applied: %s", len(applied),
			len(fields), strings.Join(applied, ", "))
	}
	return d.Write()
}

// publishable returns artifacts the repository accepts.
func publishable(artifacts []string) []string {
	var result []string
	for _, artifact := range artifacts {
		for _, ext := range repo.Extensions {
			if filepath.Ext(artifact) == ext {
				result = append(result, artifact)
				break
			}
		}
	}
	return result
}

// internalPkgBuildModule is a default pkg build module.
func internalPkgBuildModule(cmdCtx *cmdcontext.CmdCtx, args []string) error {
	d, err := readExisting(args[0])
	if err != nil {
		return err
	}
	if err := d.Validate(); err != nil {
		return err
	}

	outputDir := pkgOutputDir
	if outputDir == "" {
		outputDir = cliOpts.Build.OutputDir
	}
	pipeline := pack.NewPipeline(d, pack.CreateBuilders(newBuildTools()), outputDir)
	if err := pipeline.Run(); err != nil {
		if stagingDir := pipeline.StagingDir(); stagingDir != "" {
			log.Infof("Staging directory of %s is kept in %s", d.Name, stagingDir)
		}
		return err
	}
	log.Debugf("Pipeline of %s is %s", d.Name, pipeline.State())
	for _, artifact := range pipeline.Artifacts() {
		log.Infof("Created result package: %s", artifact)
	}
	if len(pipeline.Artifacts()) == 0 {
		log.Warnf("No artifacts are built for %s", d.Name)
		return nil
	}

	if !pkgPublish {
		return nil
	}
	artifacts := publishable(pipeline.Artifacts())
	if len(artifacts) == 0 {
		log.Warnf("No artifacts of %s can be published", d.Name)
		return nil
	}
	l, err := loadLayout()
	if err != nil {
		return err
	}
	_, err = newCoordinator(l).Publish(l, artifacts, publishArchitectures(d, l))
	return err
}

// binaryArchitectures returns archs without the source pseudo architecture.
func binaryArchitectures(archs []string) []string {
	var result []string
	for _, name := range archs {
		if arch.Normalize(name) != arch.SourceArch {
			result = append(result, name)
		}
	}
	return result
}

// publishArchitectures returns architectures built artifacts are published
// to. Built artifacts are binary, so source leaves are only used when asked
// for explicitly. Packages without binary architectures go to every binary
// architecture of the repository.
func publishArchitectures(d *descriptor.Descriptor, l *repo.Layout) []string {
	if len(pkgArchitectures) > 0 {
		return pkgArchitectures
	}
	if archs := binaryArchitectures(d.Package.Architecture); len(archs) > 0 {
		return archs
	}
	return binaryArchitectures(l.Architectures)
}

// internalPkgValidModule is a default pkg valid module.
func internalPkgValidModule(cmdCtx *cmdcontext.CmdCtx, args []string) error {
	if err := ensureCliOpts(); err != nil {
		return err
	}
	d, err := descriptor.Read(cliOpts.Package.Directory, args[0])
	if err != nil {
		fmt.Printf("%s: %s\n", color.RedString("invalid"), err)
		return util.ErrCmdAbort
	}
	if err := d.Validate(); err != nil {
		fmt.Printf("%s: %s\n", color.RedString("invalid"), err)
		return util.ErrCmdAbort
	}
	fmt.Printf("%s: %s\n", color.GreenString("valid"), d.DocumentPath())
	return nil
}

// internalPkgInfoModule is a default pkg info module.
func internalPkgInfoModule(cmdCtx *cmdcontext.CmdCtx, args []string) error {
	opts, err := tableOpts()
	if err != nil {
		return err
	}
	d, err := readExisting(args[0])
	if err != nil {
		return err
	}

	tbl := formatter.NewTable(opts, "SECTION", "KEY", "VALUE")
	for _, value := range d.Values() {
		tbl.Append(value.Section, value.Key, value.Value)
	}
	fmt.Print(tbl.Render())
	return nil
}

// internalPkgDeleteModule is a default pkg delete module.
func internalPkgDeleteModule(cmdCtx *cmdcontext.CmdCtx, args []string) error {
	if err := ensureCliOpts(); err != nil {
		return err
	}
	return descriptor.Delete(cliOpts.Package.Directory, args[0])
}

// internalPkgBumpModule is a default pkg bump module.
func internalPkgBumpModule(cmdCtx *cmdcontext.CmdCtx, args []string) error {
	d, err := readExisting(args[0])
	if err != nil {
		return err
	}
	bumped, err := version.Bump(d.Package.Version)
	if err != nil {
		return err
	}
	if _, err := d.Update(descriptor.Fields{"version": bumped}); err != nil {
		return err
	}
	if err := d.Write(); err != nil {
		return err
	}
	fmt.Println(bumped)
	return nil
}
