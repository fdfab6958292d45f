package tmpl

import (
	"errors"
	"strings"
	"testing"

	"github.com/quernbuild/quern/internal/recipe"
)

func TestExpand(t *testing.T) {
	src := `{% set version = "0.7.13" %}
{% set sha256 = "8f9f8eb1db4a22a2af6ba7c40cda2bbc6cbe4f4a94ed15a0e5fcf09e7eafa5f1" %}

package:
  name: climlab
  version: {{ version }}

source:
  url: https://github.com/climlab/climlab/archive/v{{ version }}.tar.gz
  sha256: {{ sha256 }}

build:
  script: "{{ PYTHON }} -m pip install . -vv"

requirements:
  run:
    - {{ pin_compatible('numpy') }}
    - {{ compiler("fortran") }}
`
	out, err := Expand("meta.yaml", []byte(src))
	if err != nil {
		t.Fatalf("Expand failed: %v", err)
	}
	rendered := string(out)

	wantLines := []string{
		"  version: 0.7.13",
		"  url: https://github.com/climlab/climlab/archive/v0.7.13.tar.gz",
		"  sha256: 8f9f8eb1db4a22a2af6ba7c40cda2bbc6cbe4f4a94ed15a0e5fcf09e7eafa5f1",
		`  script: "python -m pip install . -vv"`,
		"    - pin_compatible(numpy)",
		"    - compiler(fortran)",
	}
	for _, want := range wantLines {
		if !strings.Contains(rendered, want) {
			t.Errorf("rendered text missing %q:\n%s", want, rendered)
		}
	}
	if strings.Contains(rendered, "{%") || strings.Contains(rendered, "{{") {
		t.Errorf("rendered text still contains template syntax:\n%s", rendered)
	}
}

func TestExpandPreservesLineNumbers(t *testing.T) {
	src := "{% set version = \"1.0\" %}\npackage:\n  name: example\n  version: {{ version }}\n"
	out, err := Expand("meta.yaml", []byte(src))
	if err != nil {
		t.Fatalf("Expand failed: %v", err)
	}
	lines := strings.Split(string(out), "\n")
	if len(lines) != 5 {
		t.Fatalf("line count changed: got %d, want 5", len(lines))
	}
	if lines[0] != "" {
		t.Errorf("set directive line not blanked: %q", lines[0])
	}
	if lines[3] != "  version: 1.0" {
		t.Errorf("line 4 = %q, want %q", lines[3], "  version: 1.0")
	}
}

func TestExpandNumberLiteral(t *testing.T) {
	src := "{% set build = 2 %}\nbuild:\n  number: {{ build }}\n"
	out, err := Expand("meta.yaml", []byte(src))
	if err != nil {
		t.Fatalf("Expand failed: %v", err)
	}
	if !strings.Contains(string(out), "number: 2") {
		t.Errorf("number literal not substituted:\n%s", out)
	}
}

func TestExpandErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		line int
		msg  string
	}{
		{"unset variable", "package:\n  version: {{ version }}\n", 2, "is not set"},
		{"bad set value", "{% set v = foo %}\n", 1, "not a quoted string or number"},
		{"duplicate set", "{% set v = \"1\" %}\n{% set v = \"2\" %}\n", 2, "already set"},
		{"if directive", "{% if win %}\n", 1, "unsupported template directive"},
		{"for directive", "package:\n{% for x in y %}\n", 2, "unsupported template directive"},
		{"expression", "a: {{ version + 1 }}\n", 1, "unsupported substitution"},
		{"unclosed braces", "a: {{ version\n", 1, "unbalanced substitution braces"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Expand("meta.yaml", []byte(tt.src))
			if err == nil {
				t.Fatalf("Expand succeeded, want error")
			}
			var parseErr *recipe.ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("error = %v, want ParseError", err)
			}
			if parseErr.Line != tt.line {
				t.Errorf("error line = %d, want %d", parseErr.Line, tt.line)
			}
			if !strings.Contains(parseErr.Msg, tt.msg) {
				t.Errorf("error %q does not contain %q", parseErr.Msg, tt.msg)
			}
			if parseErr.Name != "meta.yaml" {
				t.Errorf("error name = %q, want meta.yaml", parseErr.Name)
			}
		})
	}
}

func TestExpandMarkers(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"- {{ pin_compatible('numpy') }}", "- pin_compatible(numpy)"},
		{`- {{ pin_compatible("scipy") }}`, "- pin_compatible(scipy)"},
		{"- {{ compiler('c') }}", "- compiler(c)"},
		{"- {{ compiler('fortran') }}  # [not win]", "- compiler(fortran)  # [not win]"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			out, err := Expand("meta.yaml", []byte(tt.in))
			if err != nil {
				t.Fatalf("Expand failed: %v", err)
			}
			if string(out) != tt.want {
				t.Errorf("Expand = %q, want %q", out, tt.want)
			}
		})
	}
}
