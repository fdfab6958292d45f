// Package manifest reads and writes resolved build plans in quern's
// line-oriented manifest format. A manifest records the exact outcome
// of one resolution so later runs can detect drift.
package manifest

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/quernbuild/quern/internal/plan"
)

const header = "# quern build manifest: version 1\n"

// Emitter writes build plans in manifest format version 1.
type Emitter struct {
	w io.Writer
}

// NewEmitter creates a new manifest emitter.
func NewEmitter(w io.Writer) *Emitter {
	return &Emitter{w: w}
}

// Emit writes one build plan. Dependency lines keep the plan's order,
// which follows the recipe.
func (e *Emitter) Emit(p *plan.BuildPlan) error {
	if _, err := fmt.Fprint(e.w, header); err != nil {
		return err
	}

	fields := []struct {
		name  string
		value string
	}{
		{"package", p.Package},
		{"version", p.Version},
		{"target", p.Target.String()},
		{"build_number", strconv.Itoa(p.BuildNumber)},
		{"build_string", p.BuildString},
		{"digest", p.Digest},
	}
	for _, f := range fields {
		if _, err := fmt.Fprintf(e.w, "%s: %s\n", f.name, f.value); err != nil {
			return err
		}
	}
	if p.Script != "" {
		if _, err := fmt.Fprintf(e.w, "script: %s\n", p.Script); err != nil {
			return err
		}
	}
	for _, ep := range p.EntryPoints {
		if _, err := fmt.Fprintf(e.w, "entry_point: %s\n", ep); err != nil {
			return err
		}
	}

	if err := e.emitSources(p.Sources); err != nil {
		return err
	}
	if err := e.emitDeps("BUILD", p.Build); err != nil {
		return err
	}
	if err := e.emitDeps("HOST", p.Host); err != nil {
		return err
	}
	if err := e.emitDeps("RUN", p.Run); err != nil {
		return err
	}
	return e.emitTest(p.Test)
}

func (e *Emitter) emitSources(sources []plan.Source) error {
	if _, err := fmt.Fprint(e.w, "SOURCES\n"); err != nil {
		return err
	}
	for _, src := range sources {
		if _, err := fmt.Fprintf(e.w, "  %s\n", src.URL); err != nil {
			return err
		}
		if src.SHA256 != "" {
			if _, err := fmt.Fprintf(e.w, "    sha256: %s\n", src.SHA256); err != nil {
				return err
			}
		}
		if src.Folder != "" {
			if _, err := fmt.Fprintf(e.w, "    folder: %s\n", src.Folder); err != nil {
				return err
			}
		}
		for _, patch := range src.Patches {
			if _, err := fmt.Fprintf(e.w, "    patch: %s\n", patch); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *Emitter) emitDeps(section string, deps []plan.Dep) error {
	if _, err := fmt.Fprintf(e.w, "%s\n", section); err != nil {
		return err
	}
	for _, d := range deps {
		if _, err := fmt.Fprintf(e.w, "  %s\n", d.Spec()); err != nil {
			return err
		}
	}
	return nil
}

// emitTest writes the TEST section, skipped entirely for plans with no
// smoke tests.
func (e *Emitter) emitTest(test plan.Test) error {
	if len(test.Requires) == 0 && len(test.Imports) == 0 && len(test.Commands) == 0 {
		return nil
	}
	if _, err := fmt.Fprint(e.w, "TEST\n"); err != nil {
		return err
	}
	if len(test.Requires) > 0 {
		if _, err := fmt.Fprint(e.w, "  requires:\n"); err != nil {
			return err
		}
		for _, d := range test.Requires {
			if _, err := fmt.Fprintf(e.w, "    %s\n", d.Spec()); err != nil {
				return err
			}
		}
	}
	if err := e.emitTestLines("imports", test.Imports); err != nil {
		return err
	}
	return e.emitTestLines("commands", test.Commands)
}

func (e *Emitter) emitTestLines(block string, lines []string) error {
	if len(lines) == 0 {
		return nil
	}
	if _, err := fmt.Fprintf(e.w, "  %s:\n", block); err != nil {
		return err
	}
	for _, line := range lines {
		if _, err := fmt.Fprintf(e.w, "    %s\n", line); err != nil {
			return err
		}
	}
	return nil
}

// WriteFile emits a plan to a manifest file.
func WriteFile(path string, p *plan.BuildPlan) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	if err := NewEmitter(f).Emit(p); err != nil {
		f.Close()
		return fmt.Errorf("writing manifest %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}
