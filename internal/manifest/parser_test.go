package manifest

import (
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestParserParse(t *testing.T) {
	p, err := NewParser(strings.NewReader(sampleManifest)).Parse()
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if p.Package != "climlab" || p.Version != "0.6.2" {
		t.Errorf("package = %s %s, want climlab 0.6.2", p.Package, p.Version)
	}
	if p.Target.Platform != "linux-64" || p.Target.Python != "3.7" || p.Target.NumPy != "1.16" {
		t.Errorf("target = %+v, want linux-64 py37 np116", p.Target)
	}
	if p.BuildNumber != 0 {
		t.Errorf("build number = %d, want 0", p.BuildNumber)
	}
	if p.BuildString != "np116py37h3f9c2a1_0" {
		t.Errorf("build string = %q", p.BuildString)
	}
	if p.Digest != "blake3:3f9c2a1d" {
		t.Errorf("digest = %q", p.Digest)
	}
	if p.Script != "python -m pip install . -vv" {
		t.Errorf("script = %q", p.Script)
	}
	if got, want := p.EntryPoints, []string{"climlab-info = climlab.cli:info"}; !reflect.DeepEqual(got, want) {
		t.Errorf("entry points = %v, want %v", got, want)
	}

	if len(p.Sources) != 1 {
		t.Fatalf("sources = %+v, want one", p.Sources)
	}
	src := p.Sources[0]
	if src.URL != "https://example.test/climlab-0.6.2.tar.gz" {
		t.Errorf("source url = %q", src.URL)
	}
	if len(src.SHA256) != 64 {
		t.Errorf("source sha256 = %q, want 64 hex digits", src.SHA256)
	}
	if got, want := src.Patches, []string{"0001-shared.patch"}; !reflect.DeepEqual(got, want) {
		t.Errorf("source patches = %v, want %v", got, want)
	}

	if len(p.Build) != 1 || p.Build[0].Spec() != "gfortran_linux-64 7" {
		t.Errorf("build = %+v, want gfortran_linux-64 7", p.Build)
	}
	if len(p.Host) != 3 || p.Host[2].Spec() != "pip" {
		t.Errorf("host = %+v, want three entries ending in pip", p.Host)
	}
	if len(p.Run) != 3 || p.Run[1].Spec() != "numpy >=1.16.5,<2" {
		t.Errorf("run = %+v, want pinned numpy in the middle", p.Run)
	}

	if len(p.Test.Requires) != 1 || p.Test.Requires[0].Name != "pytest" {
		t.Errorf("test requires = %+v, want pytest", p.Test.Requires)
	}
	if got, want := p.Test.Imports, []string{"climlab"}; !reflect.DeepEqual(got, want) {
		t.Errorf("test imports = %v, want %v", got, want)
	}
	if got, want := p.Test.Commands, []string{"pytest -v"}; !reflect.DeepEqual(got, want) {
		t.Errorf("test commands = %v, want %v", got, want)
	}
}

func TestParserRoundTrip(t *testing.T) {
	// The text format drops pin host versions, so stability is
	// checked on bytes: parse then re-emit must reproduce the input.
	p, err := NewParser(strings.NewReader(sampleManifest)).Parse()
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	var buf strings.Builder
	if err := NewEmitter(&buf).Emit(p); err != nil {
		t.Fatalf("Emit() error = %v", err)
	}
	if buf.String() != sampleManifest {
		t.Errorf("round trip failed:\ngot:\n%s\nwant:\n%s", buf.String(), sampleManifest)
	}
}

func TestParserErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", "empty manifest"},
		{"not a manifest", "bogus\n", "not a quern manifest"},
		{"future version", "# quern build manifest: version 2\n", "unsupported manifest version"},
		{"malformed field", "# quern build manifest: version 1\npackage climlab\n", "malformed manifest field"},
		{"unknown field", "# quern build manifest: version 1\ncolor: green\n", "unknown manifest field"},
		{"bad target", "# quern build manifest: version 1\ntarget: freebsd-64\n", "unknown platform"},
		{"negative build number", "# quern build manifest: version 1\nbuild_number: -1\n", "not a non-negative integer"},
		{"missing digest", "# quern build manifest: version 1\npackage: climlab\n", "missing package or digest"},
		{"attr before source", "# quern build manifest: version 1\npackage: x\ndigest: y\nSOURCES\n    sha256: z\n", "stray line"},
		{"bad source attr", "# quern build manifest: version 1\npackage: x\ndigest: y\nSOURCES\n  u\n    sha256z\n", "malformed source attribute"},
		{"unknown source attr", "# quern build manifest: version 1\npackage: x\ndigest: y\nSOURCES\n  u\n    md5: z\n", "unknown source attribute"},
		{"unknown test block", "# quern build manifest: version 1\npackage: x\ndigest: y\nTEST\n  artifacts:\n", "unknown test block"},
		{"stray dep line", "# quern build manifest: version 1\npackage: x\ndigest: y\nRUN\n    python\n", "stray line"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewParser(strings.NewReader(tt.input)).Parse()
			if err == nil {
				t.Fatal("Parse() succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Parse() error = %q, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestWriteAndReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "climlab-linux-64.qm")
	if err := WriteFile(path, samplePlan(t)); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	p, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if p.Package != "climlab" || p.Digest != "blake3:3f9c2a1d" {
		t.Errorf("read back %s %s, want climlab blake3:3f9c2a1d", p.Package, p.Digest)
	}
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "absent.qm"))
	if err == nil {
		t.Fatal("ReadFile succeeded on a missing file")
	}
	if !strings.Contains(err.Error(), "reading manifest") {
		t.Errorf("ReadFile error = %q, want reading manifest context", err)
	}
}
