package exitcode

import (
	"errors"
	"fmt"
	"net/url"
	"testing"

	"github.com/quernbuild/quern/internal/fetch"
	"github.com/quernbuild/quern/internal/manifest"
	"github.com/quernbuild/quern/internal/matrix"
	"github.com/quernbuild/quern/internal/plan"
	"github.com/quernbuild/quern/internal/platform"
	"github.com/quernbuild/quern/internal/recipe"
	"github.com/quernbuild/quern/internal/selector"
)

func TestFromError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, Success},
		{"plain", errors.New("boom"), Failure},
		{"parse", &recipe.ParseError{Name: "meta.yaml", Line: 3, Msg: "bad"}, Validation},
		{"lint", &recipe.LintError{}, Validation},
		{"selector", &selector.UnknownSelectorError{Name: "armv7", Reason: "is not defined"}, Validation},
		{"pin", &plan.UnresolvedPinError{Name: "numpy"}, Validation},
		{"compiler", &plan.UnknownCompilerError{Language: "rust", OS: "win"}, Validation},
		{"constraint", &plan.ConstraintError{Name: "python", Constraint: ">=3.6", Version: "2.7"}, Validation},
		{"checksum", &fetch.ChecksumError{URL: "u", Want: "a", Got: "b"}, Validation},
		{"matrix", &matrix.FailureError{}, Validation},
		{"drift", &manifest.DriftError{Path: "p", Stored: "a", Fresh: "b"}, Drift},
		{"http", &fetch.HTTPError{URL: "u", Status: 500}, Network},
		{"url", &url.Error{Op: "Get", URL: "u", Err: errors.New("connection refused")}, Network},
		{"platform", platform.ErrUnknownPlatform, Usage},
		{"wrapped parse", fmt.Errorf("loading recipe: %w", &recipe.ParseError{Name: "m", Msg: "bad"}), Validation},
		{"wrapped drift", fmt.Errorf("checking: %w", &manifest.DriftError{Path: "p"}), Drift},
		{"wrapped platform", fmt.Errorf("loading variants: %w", platform.ErrUnknownPlatform), Usage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FromError(tt.err); got != tt.want {
				t.Errorf("FromError(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
