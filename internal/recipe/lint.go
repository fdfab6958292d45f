package recipe

import (
	"fmt"
	"regexp"
)

// Lint severities.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Problem is one lint finding.
type Problem struct {
	Severity string
	Field    string
	Msg      string
}

// LintError reports that lint found problems of error severity.
type LintError struct {
	Problems int
}

func (e *LintError) Error() string {
	return fmt.Sprintf("lint found %d problem(s)", e.Problems)
}

var (
	namePattern    = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]*$`)
	versionPattern = regexp.MustCompile(`^[0-9A-Za-z_.!+]+$`)
	sha256Pattern  = regexp.MustCompile(`^[0-9a-f]{64}$`)
)

// Lint checks a recipe for structural problems that resolving a single
// target would not necessarily surface.
func Lint(r *Recipe) []Problem {
	var problems []Problem
	add := func(severity, field, msg string) {
		problems = append(problems, Problem{Severity: severity, Field: field, Msg: msg})
	}

	if r.Package.Name == "" {
		add(SeverityError, "package.name", "missing")
	} else if !namePattern.MatchString(r.Package.Name) {
		add(SeverityError, "package.name", fmt.Sprintf("%q must be lowercase letters, digits, '._-'", r.Package.Name))
	}
	if r.Package.Version == "" {
		add(SeverityError, "package.version", "missing")
	} else if !versionPattern.MatchString(r.Package.Version) {
		add(SeverityError, "package.version", fmt.Sprintf("%q may only contain letters, digits and '._!+'", r.Package.Version))
	}

	if len(r.Sources) == 0 {
		add(SeverityWarning, "source", "no source artifacts")
	}
	for i, src := range r.Sources {
		if src.URL == "" {
			add(SeverityError, fmt.Sprintf("source[%d].url", i), "missing")
		}
		switch {
		case src.SHA256 == "":
			add(SeverityWarning, fmt.Sprintf("source[%d].sha256", i), "no checksum, fetched artifacts cannot be verified")
		case !sha256Pattern.MatchString(src.SHA256):
			add(SeverityError, fmt.Sprintf("source[%d].sha256", i), fmt.Sprintf("%q is not a lowercase hex sha256", src.SHA256))
		}
	}

	lintPhase(&problems, "requirements.build", r.Requirements.Build, false)
	lintPhase(&problems, "requirements.host", r.Requirements.Host, false)
	lintPhase(&problems, "requirements.run", r.Requirements.Run, true)
	lintPhase(&problems, "test.requires", r.Test.Requires, true)

	if len(r.Test.Imports)+len(r.Test.Commands) == 0 {
		add(SeverityWarning, "test", "no import checks or commands declared")
	}
	if r.About.License == "" {
		add(SeverityWarning, "about.license", "missing")
	}
	if r.About.Summary == "" {
		add(SeverityWarning, "about.summary", "missing")
	}
	if len(r.Extra.Maintainers) == 0 {
		add(SeverityWarning, "extra.recipe-maintainers", "no maintainers listed")
	}

	return problems
}

func lintPhase(problems *[]Problem, field string, deps []Dep, pinsAllowed bool) {
	seen := map[string]int{}
	for _, d := range deps {
		if d.PinCompatible && !pinsAllowed {
			*problems = append(*problems, Problem{
				Severity: SeverityError,
				Field:    field,
				Msg:      fmt.Sprintf("line %d: pin_compatible(%s) is only valid in run and test requirements", d.Line, d.Name),
			})
		}
		if d.Name == "" {
			continue
		}
		// Identical names with different conditions are fine, the
		// same name under the same condition is a mistake.
		key := d.Name
		if d.Selector != nil {
			key += " [" + d.Selector.String() + "]"
		}
		if prev, dup := seen[key]; dup {
			*problems = append(*problems, Problem{
				Severity: SeverityWarning,
				Field:    field,
				Msg:      fmt.Sprintf("%q listed twice (lines %d and %d)", d.Name, prev, d.Line),
			})
			continue
		}
		seen[key] = d.Line
	}
}
