package matrix

import (
	"encoding/json"
	"fmt"
	"io"
)

// WriteText renders the report in quern's line format.
func (r *Report) WriteText(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "# quern matrix report\nrun: %s\npackage: %s %s\n", r.RunID, r.Package, r.Version); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "targets: %d  resolved: %d  skipped: %d  failed: %d\n", len(r.Outcomes), r.Resolved, r.Skipped, r.Failed); err != nil {
		return err
	}
	for _, o := range r.Outcomes {
		var line string
		switch o.Status {
		case StatusOK:
			line = fmt.Sprintf("%s: ok %s", o.Target, o.BuildString)
		case StatusSkipped:
			line = fmt.Sprintf("%s: skipped (%s)", o.Target, o.Reason)
		default:
			line = fmt.Sprintf("%s: failed %s", o.Target, o.Error)
		}
		if _, err := fmt.Fprintf(w, "  %s\n", line); err != nil {
			return err
		}
	}
	return nil
}

// WriteJSON renders the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
