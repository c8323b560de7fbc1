package index

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"

	"github.com/peondevelopments/aptrepo/cli/util"
)

const (
	// PackagesFileName is the uncompressed index.
	PackagesFileName = "Packages"
	// PackagesGzFileName is the compressed index.
	PackagesGzFileName = "Packages.gz"
)

// DpkgScanner runs dpkg-scanpackages against a leaf.
type DpkgScanner struct {
	// ArchiveRoot is the directory index paths are relative to.
	ArchiveRoot string
	// Program is the dpkg-scanpackages executable.
	Program string
	// Runner runs the program.
	Runner util.Runner
}

// NewDpkgScanner creates a scanner for the archive at archiveRoot.
func NewDpkgScanner(archiveRoot, program string, runner util.Runner) *DpkgScanner {
	if program == "" {
		program = "dpkg-scanpackages"
	}
	if runner == nil {
		runner = util.ExecRunner{}
	}
	return &DpkgScanner{ArchiveRoot: archiveRoot, Program: program, Runner: runner}
}

// Scan implements Scanner. Both indexes are replaced atomically and only
// after the scanner succeeds.
func (s *DpkgScanner) Scan(leaf string) error {
	rel, err := filepath.Rel(s.ArchiveRoot, leaf)
	if err != nil {
		return fmt.Errorf("leaf %s is outside of %s: %w", leaf, s.ArchiveRoot, err)
	}

	var output bytes.Buffer
	err = s.Runner.Run(util.Command{
		Program: s.Program,
		Args:    []string{filepath.ToSlash(rel), "/dev/null"},
		Dir:     s.ArchiveRoot,
		Stdout:  &output,
	})
	if err != nil {
		return err
	}

	index := output.Bytes()
	if err := util.WriteFileAtomic(filepath.Join(leaf, PackagesFileName), index,
		util.FilePermissions); err != nil {
		return err
	}
	return util.WriteAtomic(filepath.Join(leaf, PackagesGzFileName), util.FilePermissions,
		func(w io.Writer) error {
			return util.CompressGzip(bytes.NewReader(index), w)
		})
}
