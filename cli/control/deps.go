package control

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer/stateful"
)

// DepRelation tags are false-positive highlighted by golang-ci-linter.
// Those tags are needed for participle parser package.
//
//nolint
type DepRelation struct {
	Relation string `parser:"@( \"=\" \"=\" | \">\" \">\" | \"<\" \"<\" | \">\" \"=\" | \"<\" \"=\" | \"=\" | \">\" | \"<\" )"`
	Version  string `parser:"@Word"`
}

// Dependency tags are false-positive highlighted by golang-ci-linter.
// Those tags are needed for participle parser package.
//
//nolint
type Dependency struct {
	Name     string       `parser:"@Word"`
	Relation *DepRelation `parser:"( \"(\" @@ \")\" | @@ )?"`
}

// DependencyExpr is a list of alternative dependencies.
//
//nolint
type DependencyExpr struct {
	Alternatives []*Dependency `parser:"@@ ( \"|\" @@ )*"`
}

var depParser = participle.MustBuild(
	&DependencyExpr{},
	participle.Lexer(getLexer()),
	participle.Elide("Whitespace"),
)

func getLexer() *stateful.Definition {
	return stateful.MustSimple([]stateful.Rule{
		{
			Name:    "Word",
			Pattern: `[a-zA-Z0-9][a-zA-Z0-9+.~:_\-]*`,
			Action:  nil,
		},
		{
			Name:    "Punct",
			Pattern: `[=<>()|]`,
			Action:  nil,
		},
		{
			Name:    "Whitespace",
			Pattern: `[ \t\n\r]+`,
			Action:  nil,
		},
	})
}

// getDebRelation returns a correct relation string from the passed one.
func getDebRelation(relation string) string {
	if relation == ">" || relation == "<" {
		// Deb format uses >> and << instead of > and <
		return fmt.Sprintf("%s%s", relation, relation)
	} else if relation == "==" {
		return "="
	}

	return relation
}

// String renders the dependency in relation syntax of control files.
func (dep *Dependency) String() string {
	if dep.Relation == nil {
		return dep.Name
	}
	return fmt.Sprintf("%s (%s %s)", dep.Name, getDebRelation(dep.Relation.Relation),
		dep.Relation.Version)
}

// String renders alternatives separated by "|".
func (expr *DependencyExpr) String() string {
	rendered := make([]string, 0, len(expr.Alternatives))
	for _, dep := range expr.Alternatives {
		rendered = append(rendered, dep.String())
	}
	return strings.Join(rendered, " | ")
}

// ParseDependencies parses dependency entries. Empty entries are skipped.
func ParseDependencies(rawDeps []string) ([]*DependencyExpr, error) {
	deps := make([]*DependencyExpr, 0, len(rawDeps))
	for _, dep := range rawDeps {
		dep = strings.TrimSpace(dep)
		if dep == "" {
			continue
		}

		parsed := &DependencyExpr{}
		if err := depParser.ParseString("", dep, parsed); err != nil {
			return nil, fmt.Errorf("failed to parse dependency %q: %s", dep, err)
		}
		deps = append(deps, parsed)
	}
	return deps, nil
}

// RenderDependencies normalizes dependency entries to relation syntax.
func RenderDependencies(rawDeps []string) ([]string, error) {
	deps, err := ParseDependencies(rawDeps)
	if err != nil {
		return nil, err
	}
	rendered := make([]string, 0, len(deps))
	for _, dep := range deps {
		rendered = append(rendered, dep.String())
	}
	return rendered, nil
}
