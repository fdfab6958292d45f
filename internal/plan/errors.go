package plan

import "fmt"

// UnresolvedPinError reports a pin_compatible dependency that cannot
// be concretized for a target.
type UnresolvedPinError struct {
	Name   string
	Line   int
	Reason string
}

func (e *UnresolvedPinError) Error() string {
	reason := e.Reason
	if reason == "" {
		reason = "not present in host requirements"
	}
	if e.Line > 0 {
		return fmt.Sprintf("line %d: pin_compatible(%s): %s", e.Line, e.Name, reason)
	}
	return fmt.Sprintf("pin_compatible(%s): %s", e.Name, reason)
}

// UnknownCompilerError reports a compiler language the variant
// configuration has no package for on a target's operating system.
type UnknownCompilerError struct {
	Language string
	OS       string
	Line     int
}

func (e *UnknownCompilerError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: no %s compiler configured for %s", e.Line, e.Language, e.OS)
	}
	return fmt.Sprintf("no %s compiler configured for %s", e.Language, e.OS)
}

// ConstraintError reports a dependency constraint that contradicts the
// target's pinned interpreter version.
type ConstraintError struct {
	Name       string
	Constraint string
	Version    string
	Line       int
}

func (e *ConstraintError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s %s conflicts with target %s %s", e.Line, e.Name, e.Constraint, e.Name, e.Version)
	}
	return fmt.Sprintf("%s %s conflicts with target %s %s", e.Name, e.Constraint, e.Name, e.Version)
}
