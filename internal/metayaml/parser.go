// Package metayaml parses rendered recipe text into the recipe model.
// Platform conditions ride on trailing line comments, so parsing walks
// the yaml node tree instead of plain unmarshalling.
package metayaml

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/quernbuild/quern/internal/recipe"
	"github.com/quernbuild/quern/internal/selector"
	"github.com/quernbuild/quern/internal/tmpl"
)

// Parser turns recipe files into recipe values.
type Parser struct{}

// NewParser creates a recipe parser.
func NewParser() *Parser {
	return &Parser{}
}

// ParseFile reads, renders and parses one recipe file.
func (p *Parser) ParseFile(path string) (*recipe.Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading recipe: %w", err)
	}
	rendered, err := tmpl.Expand(path, data)
	if err != nil {
		return nil, err
	}
	return p.Parse(path, rendered)
}

// Parse parses rendered recipe text. The name labels parse errors.
func (p *Parser) Parse(name string, rendered []byte) (*recipe.Recipe, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(rendered, &doc); err != nil {
		return nil, &recipe.ParseError{Name: name, Msg: err.Error()}
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, &recipe.ParseError{Name: name, Msg: "empty recipe"}
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, &recipe.ParseError{Name: name, Line: root.Line, Msg: "recipe root must be a mapping"}
	}

	rec := &recipe.Recipe{}
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]
		var err error
		switch key.Value {
		case "package":
			err = parsePackage(name, value, &rec.Package)
		case "source":
			rec.Sources, err = parseSources(name, value)
		case "build":
			err = parseBuild(name, value, &rec.Build)
		case "requirements":
			err = parseRequirements(name, value, &rec.Requirements)
		case "test":
			err = parseTest(name, value, &rec.Test)
		case "about":
			err = parseAbout(name, value, &rec.About)
		case "extra":
			err = parseExtra(name, value, &rec.Extra)
		default:
			// Unknown sections are ignored.
		}
		if err != nil {
			return nil, err
		}
	}
	return rec, nil
}

var selectorComment = regexp.MustCompile(`^#\s*\[(.+)\]$`)

// lineSelector extracts a trailing [condition] comment. The yaml
// library attaches line comments to either the value or the key node
// depending on layout, so both are consulted.
func lineSelector(name string, nodes ...*yaml.Node) (*selector.Expr, error) {
	for _, n := range nodes {
		if n == nil || n.LineComment == "" {
			continue
		}
		m := selectorComment.FindStringSubmatch(strings.TrimSpace(n.LineComment))
		if m == nil {
			continue
		}
		expr, err := selector.Parse(m[1])
		if err != nil {
			return nil, &recipe.ParseError{Name: name, Line: n.Line, Msg: err.Error()}
		}
		return expr, nil
	}
	return nil, nil
}

func scalar(name string, n *yaml.Node, field string) (string, error) {
	if n.Kind != yaml.ScalarNode {
		return "", &recipe.ParseError{Name: name, Line: n.Line, Msg: field + " must be a scalar"}
	}
	return strings.TrimSpace(n.Value), nil
}

func mapping(name string, n *yaml.Node, field string) error {
	if n.Kind != yaml.MappingNode {
		return &recipe.ParseError{Name: name, Line: n.Line, Msg: field + " must be a mapping"}
	}
	return nil
}

func parsePackage(name string, n *yaml.Node, out *recipe.Package) error {
	if err := mapping(name, n, "package"); err != nil {
		return err
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, value := n.Content[i], n.Content[i+1]
		text, err := scalar(name, value, "package."+key.Value)
		if err != nil {
			return err
		}
		switch key.Value {
		case "name":
			out.Name = text
		case "version":
			out.Version = text
		}
	}
	return nil
}

func parseSources(name string, n *yaml.Node) ([]recipe.Source, error) {
	switch n.Kind {
	case yaml.MappingNode:
		src, err := parseSource(name, n)
		if err != nil {
			return nil, err
		}
		return []recipe.Source{src}, nil
	case yaml.SequenceNode:
		var sources []recipe.Source
		for _, item := range n.Content {
			if err := mapping(name, item, "source entry"); err != nil {
				return nil, err
			}
			src, err := parseSource(name, item)
			if err != nil {
				return nil, err
			}
			sources = append(sources, src)
		}
		return sources, nil
	}
	return nil, &recipe.ParseError{Name: name, Line: n.Line, Msg: "source must be a mapping or a list"}
}

func parseSource(name string, n *yaml.Node) (recipe.Source, error) {
	src := recipe.Source{Line: n.Line}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, value := n.Content[i], n.Content[i+1]
		var err error
		switch key.Value {
		case "url":
			src.URL, err = scalar(name, value, "source.url")
			if err != nil {
				return src, err
			}
			if src.Selector == nil {
				src.Selector, err = lineSelector(name, value, key)
			}
		case "sha256":
			src.SHA256, err = scalar(name, value, "source.sha256")
		case "folder":
			src.Folder, err = scalar(name, value, "source.folder")
		case "patches":
			if value.Kind != yaml.SequenceNode {
				return src, &recipe.ParseError{Name: name, Line: value.Line, Msg: "source.patches must be a list"}
			}
			for _, item := range value.Content {
				text, perr := scalar(name, item, "patch")
				if perr != nil {
					return src, perr
				}
				sel, perr := lineSelector(name, item)
				if perr != nil {
					return src, perr
				}
				src.Patches = append(src.Patches, recipe.Patch{Path: text, Selector: sel, Line: item.Line})
			}
		}
		if err != nil {
			return src, err
		}
	}
	return src, nil
}

func parseBuild(name string, n *yaml.Node, out *recipe.Build) error {
	if err := mapping(name, n, "build"); err != nil {
		return err
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, value := n.Content[i], n.Content[i+1]
		switch key.Value {
		case "number":
			text, err := scalar(name, value, "build.number")
			if err != nil {
				return err
			}
			number, err := strconv.Atoi(text)
			if err != nil || number < 0 {
				return &recipe.ParseError{Name: name, Line: value.Line, Msg: fmt.Sprintf("build.number %q must be a non-negative integer", text)}
			}
			out.Number = number
		case "skip":
			text, err := scalar(name, value, "build.skip")
			if err != nil {
				return err
			}
			skip, ok := parseBool(text)
			if !ok {
				return &recipe.ParseError{Name: name, Line: value.Line, Msg: fmt.Sprintf("build.skip %q must be true or false", text)}
			}
			out.Skip = skip
			out.SkipLine = value.Line
			out.SkipSelector, err = lineSelector(name, value, key)
			if err != nil {
				return err
			}
		case "script":
			text, err := scalar(name, value, "build.script")
			if err != nil {
				return err
			}
			out.Script = text
		case "entry_points":
			if value.Kind != yaml.SequenceNode {
				return &recipe.ParseError{Name: name, Line: value.Line, Msg: "build.entry_points must be a list"}
			}
			for _, item := range value.Content {
				text, err := scalar(name, item, "entry point")
				if err != nil {
					return err
				}
				out.EntryPoints = append(out.EntryPoints, text)
			}
		}
	}
	return nil
}

func parseBool(text string) (value, ok bool) {
	switch text {
	case "true", "True", "yes":
		return true, true
	case "false", "False", "no":
		return false, true
	}
	return false, false
}

func parseRequirements(name string, n *yaml.Node, out *recipe.Requirements) error {
	if err := mapping(name, n, "requirements"); err != nil {
		return err
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, value := n.Content[i], n.Content[i+1]
		switch key.Value {
		case "build", "host", "run":
		default:
			continue
		}
		deps, err := parseDeps(name, value, "requirements."+key.Value)
		if err != nil {
			return err
		}
		switch key.Value {
		case "build":
			out.Build = deps
		case "host":
			out.Host = deps
		case "run":
			out.Run = deps
		}
	}
	return nil
}

var (
	pinMarker      = regexp.MustCompile(`^pin_compatible\(([^)]+)\)$`)
	compilerMarker = regexp.MustCompile(`^compiler\(([^)]+)\)$`)
	depPattern     = regexp.MustCompile(`^([A-Za-z0-9][A-Za-z0-9._-]*)(?:\s+(.+))?$`)
)

func parseDeps(name string, n *yaml.Node, field string) ([]recipe.Dep, error) {
	if n.Kind != yaml.SequenceNode {
		return nil, &recipe.ParseError{Name: name, Line: n.Line, Msg: field + " must be a list"}
	}
	var deps []recipe.Dep
	for _, item := range n.Content {
		text, err := scalar(name, item, field+" entry")
		if err != nil {
			return nil, err
		}
		sel, err := lineSelector(name, item)
		if err != nil {
			return nil, err
		}
		dep, err := parseDep(name, text, item.Line)
		if err != nil {
			return nil, err
		}
		dep.Selector = sel
		deps = append(deps, dep)
	}
	return deps, nil
}

func parseDep(name, text string, line int) (recipe.Dep, error) {
	if m := pinMarker.FindStringSubmatch(text); m != nil {
		return recipe.Dep{Name: strings.TrimSpace(m[1]), PinCompatible: true, Line: line}, nil
	}
	if m := compilerMarker.FindStringSubmatch(text); m != nil {
		return recipe.Dep{Compiler: strings.TrimSpace(m[1]), Line: line}, nil
	}
	m := depPattern.FindStringSubmatch(text)
	if m == nil {
		return recipe.Dep{}, &recipe.ParseError{Name: name, Line: line, Msg: fmt.Sprintf("invalid dependency %q", text)}
	}
	return recipe.Dep{Name: m[1], Constraint: strings.TrimSpace(m[2]), Line: line}, nil
}

func parseTest(name string, n *yaml.Node, out *recipe.Test) error {
	if err := mapping(name, n, "test"); err != nil {
		return err
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, value := n.Content[i], n.Content[i+1]
		var err error
		switch key.Value {
		case "requires":
			out.Requires, err = parseDeps(name, value, "test.requires")
		case "imports":
			out.Imports, err = parseEntries(name, value, "test.imports")
		case "commands":
			out.Commands, err = parseEntries(name, value, "test.commands")
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func parseEntries(name string, n *yaml.Node, field string) ([]recipe.Entry, error) {
	if n.Kind != yaml.SequenceNode {
		return nil, &recipe.ParseError{Name: name, Line: n.Line, Msg: field + " must be a list"}
	}
	var entries []recipe.Entry
	for _, item := range n.Content {
		text, err := scalar(name, item, field+" entry")
		if err != nil {
			return nil, err
		}
		sel, err := lineSelector(name, item)
		if err != nil {
			return nil, err
		}
		entries = append(entries, recipe.Entry{Text: text, Selector: sel, Line: item.Line})
	}
	return entries, nil
}

func parseAbout(name string, n *yaml.Node, out *recipe.About) error {
	if err := mapping(name, n, "about"); err != nil {
		return err
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, value := n.Content[i], n.Content[i+1]
		text, err := scalar(name, value, "about."+key.Value)
		if err != nil {
			return err
		}
		switch key.Value {
		case "home":
			out.Home = text
		case "license":
			out.License = text
		case "license_family":
			out.LicenseFamily = text
		case "license_file":
			out.LicenseFile = text
		case "summary":
			out.Summary = text
		case "description":
			out.Description = text
		case "doc_url":
			out.DocURL = text
		case "dev_url":
			out.DevURL = text
		}
	}
	return nil
}

func parseExtra(name string, n *yaml.Node, out *recipe.Extra) error {
	if err := mapping(name, n, "extra"); err != nil {
		return err
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, value := n.Content[i], n.Content[i+1]
		if key.Value != "recipe-maintainers" {
			continue
		}
		if value.Kind != yaml.SequenceNode {
			return &recipe.ParseError{Name: name, Line: value.Line, Msg: "extra.recipe-maintainers must be a list"}
		}
		for _, item := range value.Content {
			text, err := scalar(name, item, "maintainer")
			if err != nil {
				return err
			}
			out.Maintainers = append(out.Maintainers, text)
		}
	}
	return nil
}
