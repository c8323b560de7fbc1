package pack

import "github.com/peondevelopments/aptrepo/cli/util"

// Tools are external programs used by builders.
type Tools struct {
	// DpkgDeb is the dpkg-deb executable.
	DpkgDeb string
	// Ar is the ar archiver executable.
	Ar string
	// Runner runs the programs.
	Runner util.Runner
}

// DefaultTools returns tools looked up in PATH.
func DefaultTools() Tools {
	return Tools{
		DpkgDeb: "dpkg-deb",
		Ar:      "ar",
		Runner:  util.ExecRunner{},
	}
}
