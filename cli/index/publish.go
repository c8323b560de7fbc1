package index

import (
	"github.com/apex/log"

	"github.com/peondevelopments/aptrepo/cli/repo"
)

// Publish copies artifacts into leaves of the given architectures, refreshes
// indexes of the touched leaves and regenerates Release documents.
func (c *Coordinator) Publish(l *repo.Layout, artifacts []string,
	architectures []string) (*repo.LeafSet, error) {
	modified, err := repo.AddAll(l, artifacts, architectures)
	if err != nil {
		return nil, err
	}
	if err := c.commit(l, modified); err != nil {
		return modified, err
	}
	return modified, nil
}

// Withdraw removes artifacts matching names from leaves of the given
// architectures, refreshes indexes of the touched leaves and regenerates
// Release documents. Names matching nothing are reported in the result.
func (c *Coordinator) Withdraw(l *repo.Layout, names []string,
	architectures []string) (*repo.RemoveResult, error) {
	result, err := repo.Remove(l, names, architectures)
	if err != nil {
		return nil, err
	}
	if err := c.commit(l, result.Modified); err != nil {
		return result, err
	}
	return result, nil
}

// commit refreshes modified leaves and the Release documents of l.
func (c *Coordinator) commit(l *repo.Layout, modified *repo.LeafSet) error {
	if modified.Len() == 0 {
		log.Info("No repository leaves were modified")
		return nil
	}
	if _, err := c.Refresh(modified); err != nil {
		return err
	}
	return repo.WriteReleases(l)
}
