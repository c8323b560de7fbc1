// Package index regenerates package indexes of repository leaves.
package index

import (
	"fmt"

	"github.com/apex/log"

	"github.com/peondevelopments/aptrepo/cli/repo"
	"github.com/peondevelopments/aptrepo/cli/util"
)

// Scanner regenerates Packages and Packages.gz of a leaf.
type Scanner interface {
	// Scan regenerates the indexes of leaf.
	Scan(leaf string) error
}

// ScanError is reported when the index scanner fails on a leaf.
type ScanError struct {
	// Leaf is the leaf directory.
	Leaf string
	// ExitCode is the scanner exit status, -1 if unknown.
	ExitCode int
	// Err is the scanner error.
	Err error
}

// Error implements the [error] interface.
func (e *ScanError) Error() string {
	return fmt.Sprintf("failed to refresh index of %s (exit code %d): %s",
		e.Leaf, e.ExitCode, e.Err)
}

// Unwrap returns the scanner error.
func (e *ScanError) Unwrap() error {
	return e.Err
}

// Coordinator refreshes indexes of modified leaves.
type Coordinator struct {
	Scanner Scanner
}

// NewCoordinator creates a coordinator using scanner.
func NewCoordinator(scanner Scanner) *Coordinator {
	return &Coordinator{Scanner: scanner}
}

// Refresh scans every leaf of the set once, in insertion order. It stops on
// the first failure and returns the number of refreshed leaves.
func (c *Coordinator) Refresh(leaves *repo.LeafSet) (int, error) {
	if leaves == nil {
		return 0, nil
	}
	refreshed := 0
	for _, leaf := range leaves.Paths() {
		log.Infof("Refreshing index of %s", leaf)
		if err := c.Scanner.Scan(leaf); err != nil {
			return refreshed, &ScanError{Leaf: leaf, ExitCode: util.ExitCode(err), Err: err}
		}
		refreshed++
	}
	return refreshed, nil
}
