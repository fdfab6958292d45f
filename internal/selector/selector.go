// Package selector evaluates the bracketed platform conditions recipes
// attach to individual lines, such as [win] or [py >= 35 and not osx].
package selector

import (
	"errors"
	"fmt"
	"strings"
)

// Axes resolves condition identifiers to facts about a build target.
// Boolean axes answer names like "win" or "py37", integer axes answer
// names like "py" that appear in comparisons.
type Axes interface {
	Bool(name string) (value, known bool)
	Int(name string) (value int, known bool)
}

// Expr is a parsed selector condition.
type Expr struct {
	raw  string
	root node
}

// Parse compiles a selector condition into an evaluable expression.
func Parse(text string) (*Expr, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, fmt.Errorf("empty selector")
	}
	tokens, err := lex(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parsing selector %q: %w", trimmed, err)
	}
	p := &parser{tokens: tokens}
	root, err := p.parseOr()
	if err != nil {
		return nil, fmt.Errorf("parsing selector %q: %w", trimmed, err)
	}
	if trailing := p.peek(); trailing.kind != tokEOF {
		return nil, fmt.Errorf("parsing selector %q: unexpected %q at position %d", trimmed, trailing.text, trailing.pos)
	}
	return &Expr{raw: trimmed, root: root}, nil
}

// Eval reports whether the condition holds for the given axes.
func (e *Expr) Eval(axes Axes) (bool, error) {
	ok, err := e.root.eval(axes)
	if err != nil {
		var unknown *UnknownSelectorError
		if errors.As(err, &unknown) && unknown.Expr == "" {
			unknown.Expr = e.raw
		}
		return false, err
	}
	return ok, nil
}

// String returns the condition as written in the recipe.
func (e *Expr) String() string {
	return e.raw
}

// UnknownSelectorError reports a condition identifier no axis answers.
type UnknownSelectorError struct {
	Name   string
	Reason string
	Expr   string
}

func (e *UnknownSelectorError) Error() string {
	reason := e.Reason
	if reason == "" {
		reason = "is not defined"
	}
	if e.Expr != "" {
		return fmt.Sprintf("selector variable %q %s in [%s]", e.Name, reason, e.Expr)
	}
	return fmt.Sprintf("selector variable %q %s", e.Name, reason)
}
