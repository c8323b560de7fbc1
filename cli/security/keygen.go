// Package security generates repository signing keys and checksums of
// repository documents.
package security

import (
	"strings"

	"github.com/apex/log"

	"github.com/peondevelopments/aptrepo/cli/util"
)

// KeyParams are parameters of a generated key.
type KeyParams struct {
	// Name is the real name of the key owner.
	Name string
	// Email is the key owner address.
	Email string
	// Comment is an optional key comment.
	Comment string
	// Expire is the key expiration in gpg syntax, "0" for never.
	Expire string
	// Passphrase protects the key. Empty means no protection.
	Passphrase string
}

// GenerateKey generates a key with gpg in batch mode. The exit status of gpg
// is the outcome.
func GenerateKey(runner util.Runner, program string, params KeyParams) error {
	if params.Expire == "" {
		params.Expire = "0"
	}
	text, err := util.GetTextTemplatedStr(&keyParamsTemplate, params)
	if err != nil {
		return err
	}

	log.Infof("Generating a signing key for %s", params.Name)
	return runner.Run(util.Command{
		Program: program,
		Args:    []string{"--gen-key", "--batch"},
		Stdin:   strings.NewReader(text),
	})
}
