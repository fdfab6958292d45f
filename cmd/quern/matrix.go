package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quernbuild/quern/internal/manifest"
	"github.com/quernbuild/quern/internal/matrix"
)

var (
	matrixFormat  string
	matrixWorkers int
	matrixOut     string
)

var matrixCmd = &cobra.Command{
	Use:   "matrix",
	Short: "Resolve the recipe across every configured target",
	RunE:  runMatrix,
}

func init() {
	matrixCmd.Flags().StringVar(&matrixFormat, "format", "text", "Output format (text or json)")
	matrixCmd.Flags().IntVarP(&matrixWorkers, "workers", "w", 0, "Parallel resolve workers (default: CPU count)")
	matrixCmd.Flags().StringVarP(&matrixOut, "out", "o", "", "Directory to write one manifest per resolved target into")
	rootCmd.AddCommand(matrixCmd)
}

func runMatrix(cmd *cobra.Command, args []string) error {
	rec, err := loadRecipe()
	if err != nil {
		return err
	}
	cfg, err := loadVariants()
	if err != nil {
		return err
	}

	runner := matrix.NewRunner(cfg, matrixWorkers, logger)
	report, err := runner.Run(cmd.Context(), rec)
	if err != nil {
		return err
	}

	if matrixOut != "" {
		if err := writeManifests(matrixOut, report); err != nil {
			return err
		}
	}

	switch matrixFormat {
	case "text":
		if err := report.WriteText(os.Stdout); err != nil {
			return err
		}
	case "json":
		if err := report.WriteJSON(os.Stdout); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown output format %q", matrixFormat)
	}

	if failed := report.Failures(); len(failed) > 0 {
		return &matrix.FailureError{Failed: failed}
	}
	return nil
}

// writeManifests stores one manifest per successfully resolved target,
// named after the package and the target's tag string.
func writeManifests(dir string, report *matrix.Report) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating manifest directory: %w", err)
	}
	for _, o := range report.Outcomes {
		if o.Status != matrix.StatusOK {
			continue
		}
		name := fmt.Sprintf("%s-%s.manifest", report.Package, strings.ReplaceAll(o.Target.String(), " ", "-"))
		if err := manifest.WriteFile(filepath.Join(dir, name), o.Plan); err != nil {
			return err
		}
	}
	return nil
}
