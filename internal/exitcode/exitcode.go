// Package exitcode maps quern errors to process exit codes, so shell
// callers can tell recipe problems from infrastructure ones.
package exitcode

import (
	"errors"
	"net/url"

	"github.com/quernbuild/quern/internal/fetch"
	"github.com/quernbuild/quern/internal/manifest"
	"github.com/quernbuild/quern/internal/matrix"
	"github.com/quernbuild/quern/internal/plan"
	"github.com/quernbuild/quern/internal/platform"
	"github.com/quernbuild/quern/internal/recipe"
	"github.com/quernbuild/quern/internal/selector"
)

// Exit codes.
const (
	Success    = 0
	Failure    = 1
	Usage      = 2
	Validation = 3
	Drift      = 4
	Network    = 5
)

// FromError picks the exit code for an error. Errors outside quern's
// taxonomy are generic failures.
func FromError(err error) int {
	if err == nil {
		return Success
	}

	var (
		parseErr *recipe.ParseError
		lintErr  *recipe.LintError
		selErr   *selector.UnknownSelectorError
		pinErr   *plan.UnresolvedPinError
		compErr  *plan.UnknownCompilerError
		conErr   *plan.ConstraintError
		sumErr   *fetch.ChecksumError
		failErr  *matrix.FailureError
		driftErr *manifest.DriftError
		httpErr  *fetch.HTTPError
		urlErr   *url.Error
	)
	switch {
	case errors.As(err, &parseErr),
		errors.As(err, &lintErr),
		errors.As(err, &selErr),
		errors.As(err, &pinErr),
		errors.As(err, &compErr),
		errors.As(err, &conErr),
		errors.As(err, &sumErr),
		errors.As(err, &failErr):
		return Validation
	case errors.As(err, &driftErr):
		return Drift
	case errors.As(err, &httpErr), errors.As(err, &urlErr):
		return Network
	case errors.Is(err, platform.ErrUnknownPlatform):
		return Usage
	}
	return Failure
}
