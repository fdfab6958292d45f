package manifest

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/quernbuild/quern/internal/plan"
	"github.com/quernbuild/quern/internal/platform"
)

var (
	headerRe  = regexp.MustCompile(`^# quern build manifest: version (\d+)$`)
	fieldRe   = regexp.MustCompile(`^([a-z_]+): (.+)$`)
	sectionRe = regexp.MustCompile(`^(SOURCES|BUILD|HOST|RUN|TEST)$`)
	entryRe   = regexp.MustCompile(`^  (\S.*)$`)
	attrRe    = regexp.MustCompile(`^    (\S.*)$`)
)

// Parser reads manifest files in format version 1.
type Parser struct {
	r io.Reader
}

// NewParser creates a new manifest parser.
func NewParser(r io.Reader) *Parser {
	return &Parser{r: r}
}

// Parse reads one build plan back from a manifest. The text format
// does not carry pin host versions or display metadata, so a parsed
// plan is complete for drift checks but not byte-identical to the
// resolver's output.
func (p *Parser) Parse() (*plan.BuildPlan, error) {
	out := &plan.BuildPlan{}
	scanner := bufio.NewScanner(p.r)

	sawHeader := false
	section := ""
	testBlock := ""
	srcIdx := -1
	lineno := 0

	for scanner.Scan() {
		lineno++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		if !sawHeader {
			m := headerRe.FindStringSubmatch(line)
			if m == nil {
				return nil, fmt.Errorf("line %d: not a quern manifest", lineno)
			}
			if m[1] != "1" {
				return nil, fmt.Errorf("line %d: unsupported manifest version %s", lineno, m[1])
			}
			sawHeader = true
			continue
		}

		if m := sectionRe.FindStringSubmatch(line); m != nil {
			section = m[1]
			testBlock = ""
			srcIdx = -1
			continue
		}

		switch section {
		case "":
			m := fieldRe.FindStringSubmatch(line)
			if m == nil {
				return nil, fmt.Errorf("line %d: malformed manifest field %q", lineno, line)
			}
			if err := setField(out, m[1], m[2]); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineno, err)
			}
		case "SOURCES":
			if m := entryRe.FindStringSubmatch(line); m != nil {
				out.Sources = append(out.Sources, plan.Source{URL: m[1]})
				srcIdx = len(out.Sources) - 1
				continue
			}
			m := attrRe.FindStringSubmatch(line)
			if m == nil || srcIdx < 0 {
				return nil, fmt.Errorf("line %d: stray line %q in SOURCES", lineno, line)
			}
			if err := setSourceAttr(&out.Sources[srcIdx], m[1]); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineno, err)
			}
		case "TEST":
			if m := entryRe.FindStringSubmatch(line); m != nil {
				block := strings.TrimSuffix(m[1], ":")
				switch block {
				case "requires", "imports", "commands":
					testBlock = block
				default:
					return nil, fmt.Errorf("line %d: unknown test block %q", lineno, m[1])
				}
				continue
			}
			m := attrRe.FindStringSubmatch(line)
			if m == nil || testBlock == "" {
				return nil, fmt.Errorf("line %d: stray line %q in TEST", lineno, line)
			}
			switch testBlock {
			case "requires":
				out.Test.Requires = append(out.Test.Requires, depFromSpec(m[1]))
			case "imports":
				out.Test.Imports = append(out.Test.Imports, m[1])
			case "commands":
				out.Test.Commands = append(out.Test.Commands, m[1])
			}
		default:
			m := entryRe.FindStringSubmatch(line)
			if m == nil {
				return nil, fmt.Errorf("line %d: stray line %q in %s", lineno, line, section)
			}
			d := depFromSpec(m[1])
			switch section {
			case "BUILD":
				out.Build = append(out.Build, d)
			case "HOST":
				out.Host = append(out.Host, d)
			case "RUN":
				out.Run = append(out.Run, d)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	if !sawHeader {
		return nil, errors.New("empty manifest")
	}
	if out.Package == "" || out.Digest == "" {
		return nil, errors.New("manifest missing package or digest")
	}
	return out, nil
}

func setField(out *plan.BuildPlan, name, value string) error {
	switch name {
	case "package":
		out.Package = value
	case "version":
		out.Version = value
	case "target":
		target, err := platform.ParseSpec(value)
		if err != nil {
			return fmt.Errorf("target %q: %w", value, err)
		}
		out.Target = target
	case "build_number":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("build_number %q is not a non-negative integer", value)
		}
		out.BuildNumber = n
	case "build_string":
		out.BuildString = value
	case "digest":
		out.Digest = value
	case "script":
		out.Script = value
	case "entry_point":
		out.EntryPoints = append(out.EntryPoints, value)
	default:
		return fmt.Errorf("unknown manifest field %q", name)
	}
	return nil
}

func setSourceAttr(src *plan.Source, attr string) error {
	key, value, ok := strings.Cut(attr, ": ")
	if !ok {
		return fmt.Errorf("malformed source attribute %q", attr)
	}
	switch key {
	case "sha256":
		src.SHA256 = value
	case "folder":
		src.Folder = value
	case "patch":
		src.Patches = append(src.Patches, value)
	default:
		return fmt.Errorf("unknown source attribute %q", key)
	}
	return nil
}

func depFromSpec(spec string) plan.Dep {
	fields := strings.SplitN(spec, " ", 2)
	if len(fields) == 1 {
		return plan.Dep{Name: fields[0]}
	}
	return plan.Dep{Name: fields[0], Constraint: strings.TrimSpace(fields[1])}
}

// ReadFile parses a manifest file.
func ReadFile(path string) (*plan.BuildPlan, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	defer f.Close()
	out, err := NewParser(f).Parse()
	if err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	return out, nil
}
