package main

import (
	"os"

	"github.com/apex/log"
	"github.com/dave/jennifer/jen"
)

type generateTemplateCodeOpts struct {
	PackageName  string
	FileName     string
	VariablesMap map[string]string
}

var templateCodeFiles = []generateTemplateCodeOpts{
	{
		PackageName: "security",
		FileName:    "cli/security/templates_gen.go",
		VariablesMap: map[string]string{
			"keyParamsTemplate": "cli/security/templates/gpg_batch.tmpl",
		},
	},
}

// generateTemplateCodeVar embeds text templates as string variables.
func generateTemplateCodeVar() error {
	for _, opts := range templateCodeFiles {
		f := jen.NewFile(opts.PackageName)
		f.HeaderComment("This file is generated! DO NOT EDIT")

		for key, val := range opts.VariablesMap {
			content, err := os.ReadFile(val)
			if err != nil {
				return err
			}

			f.Var().Id(key).Op("=").Lit(string(content))
		}

		if err := f.Save(opts.FileName); err != nil {
			return err
		}
	}

	return nil
}

func main() {
	if err := generateTemplateCodeVar(); err != nil {
		log.Errorf("error while generating template string variables: %s", err)
		os.Exit(1)
	}
}
