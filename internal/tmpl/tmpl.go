// Package tmpl performs the first rendering pass over raw recipe text.
// Set directives and substitutions become concrete values, macro calls
// become markers the recipe parser understands. Lines are kept in
// place so later errors still point at the original file.
package tmpl

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/quernbuild/quern/internal/recipe"
)

var (
	setPattern      = regexp.MustCompile(`^\s*\{%\s*set\s+([A-Za-z_][A-Za-z0-9_]*)\s*=\s*(.+?)\s*%\}\s*$`)
	substPattern    = regexp.MustCompile(`\{\{\s*([^{}]+?)\s*\}\}`)
	pinPattern      = regexp.MustCompile(`^pin_compatible\(\s*['"]([^'"]+)['"]\s*\)$`)
	compilerPattern = regexp.MustCompile(`^compiler\(\s*['"]([^'"]+)['"]\s*\)$`)
	namePattern     = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	numberPattern   = regexp.MustCompile(`^[0-9]+(\.[0-9]+)*$`)
)

// builtins are substitution names recipes may reference without
// setting them.
var builtins = map[string]string{
	"PYTHON": "python",
}

// Expand renders raw recipe text. Set directives are collected and
// blanked in place, substitutions are replaced with their values, and
// pin_compatible and compiler calls turn into marker form. The name
// labels parse errors.
func Expand(name string, src []byte) ([]byte, error) {
	lines := strings.Split(string(src), "\n")
	vars := map[string]string{}

	// Collect every set directive first, so substitutions may appear
	// above their definition.
	for i, line := range lines {
		m := setPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		value, err := literal(m[2])
		if err != nil {
			return nil, &recipe.ParseError{Name: name, Line: i + 1, Msg: fmt.Sprintf("set %s: %v", m[1], err)}
		}
		if _, dup := vars[m[1]]; dup {
			return nil, &recipe.ParseError{Name: name, Line: i + 1, Msg: fmt.Sprintf("set %s: already set", m[1])}
		}
		vars[m[1]] = value
		lines[i] = ""
	}

	for i, line := range lines {
		if strings.Contains(line, "{%") {
			return nil, &recipe.ParseError{Name: name, Line: i + 1, Msg: "unsupported template directive"}
		}
		var substErr error
		lines[i] = substPattern.ReplaceAllStringFunc(line, func(match string) string {
			inner := strings.TrimSpace(match[2 : len(match)-2])
			value, err := resolve(inner, vars)
			if err != nil && substErr == nil {
				substErr = &recipe.ParseError{Name: name, Line: i + 1, Msg: err.Error()}
			}
			return value
		})
		if substErr != nil {
			return nil, substErr
		}
		if strings.Contains(lines[i], "{{") || strings.Contains(lines[i], "}}") {
			return nil, &recipe.ParseError{Name: name, Line: i + 1, Msg: "unbalanced substitution braces"}
		}
	}

	return []byte(strings.Join(lines, "\n")), nil
}

// literal parses the right-hand side of a set directive: a quoted
// string or a bare number.
func literal(raw string) (string, error) {
	if len(raw) >= 2 {
		if (raw[0] == '\'' && raw[len(raw)-1] == '\'') || (raw[0] == '"' && raw[len(raw)-1] == '"') {
			return raw[1 : len(raw)-1], nil
		}
	}
	if numberPattern.MatchString(raw) {
		return raw, nil
	}
	return "", fmt.Errorf("value %s is not a quoted string or number", raw)
}

func resolve(inner string, vars map[string]string) (string, error) {
	if m := pinPattern.FindStringSubmatch(inner); m != nil {
		return "pin_compatible(" + m[1] + ")", nil
	}
	if m := compilerPattern.FindStringSubmatch(inner); m != nil {
		return "compiler(" + m[1] + ")", nil
	}
	if !namePattern.MatchString(inner) {
		return "", fmt.Errorf("unsupported substitution {{ %s }}", inner)
	}
	if v, ok := vars[inner]; ok {
		return v, nil
	}
	if v, ok := builtins[inner]; ok {
		return v, nil
	}
	return "", fmt.Errorf("substitution {{ %s }} is not set", inner)
}
