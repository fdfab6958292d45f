package manifest

import (
	"fmt"

	"github.com/quernbuild/quern/internal/plan"
)

// DriftError reports a manifest whose recorded digest no longer
// matches a fresh resolution of the same recipe and target.
type DriftError struct {
	Path   string
	Stored string
	Fresh  string
}

func (e *DriftError) Error() string {
	return fmt.Sprintf("%s: manifest drift: stored digest %s, resolved %s", e.Path, e.Stored, e.Fresh)
}

// Verify checks a stored plan against a freshly resolved one. The
// digest covers all build-relevant content, so comparing digests
// compares the plans.
func Verify(path string, stored, fresh *plan.BuildPlan) error {
	if stored.Digest == fresh.Digest {
		return nil
	}
	return &DriftError{Path: path, Stored: stored.Digest, Fresh: fresh.Digest}
}
