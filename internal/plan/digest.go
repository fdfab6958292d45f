package plan

import (
	"encoding/json"
	"fmt"

	"github.com/zeebo/blake3"

	"github.com/quernbuild/quern/internal/platform"
)

// Fingerprint computes the canonical digest of a plan's build-relevant
// content. Two plans with equal fingerprints describe identical
// builds. The build string and display metadata stay out, the former
// because it embeds the digest itself.
func Fingerprint(p *BuildPlan) (string, error) {
	body := struct {
		Package     string          `json:"package"`
		Version     string          `json:"version"`
		Target      platform.Target `json:"target"`
		BuildNumber int             `json:"build_number"`
		Script      string          `json:"script,omitempty"`
		EntryPoints []string        `json:"entry_points,omitempty"`
		Sources     []Source        `json:"sources"`
		Build       []Dep           `json:"build"`
		Host        []Dep           `json:"host"`
		Run         []Dep           `json:"run"`
		Test        Test            `json:"test"`
	}{
		Package:     p.Package,
		Version:     p.Version,
		Target:      p.Target,
		BuildNumber: p.BuildNumber,
		Script:      p.Script,
		EntryPoints: p.EntryPoints,
		Sources:     p.Sources,
		Build:       p.Build,
		Host:        p.Host,
		Run:         p.Run,
		Test:        p.Test,
	}
	data, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("canonicalizing plan: %w", err)
	}
	hasher := blake3.New()
	hasher.Write(data)
	return fmt.Sprintf("blake3:%x", hasher.Sum(nil)), nil
}
