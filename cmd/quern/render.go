package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quernbuild/quern/internal/manifest"
	"github.com/quernbuild/quern/internal/plan"
)

var (
	renderPlatform string
	renderPython   string
	renderNumPy    string
	renderFormat   string
	renderOut      string
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Resolve the recipe for one target and print its build plan",
	RunE:  runRender,
}

func init() {
	renderCmd.Flags().StringVar(&renderPlatform, "platform", "", "Target platform triple (default: host platform)")
	renderCmd.Flags().StringVar(&renderPython, "python", "3.7", "Target python version")
	renderCmd.Flags().StringVar(&renderNumPy, "numpy", "", "Target numpy version")
	renderCmd.Flags().StringVar(&renderFormat, "format", "text", "Output format (text or json)")
	renderCmd.Flags().StringVarP(&renderOut, "out", "o", "", "Write the manifest to a file instead of stdout")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	rec, err := loadRecipe()
	if err != nil {
		return err
	}
	cfg, err := loadVariants()
	if err != nil {
		return err
	}
	target, err := singleTarget(renderPlatform, renderPython, renderNumPy)
	if err != nil {
		return err
	}

	res, err := plan.Resolve(rec, target, cfg)
	if err != nil {
		return err
	}
	if res.Skipped {
		fmt.Printf("skipped: %s (%s)\n", target, res.Reason)
		return nil
	}

	switch renderFormat {
	case "text":
		if renderOut != "" {
			return manifest.WriteFile(renderOut, res.Plan)
		}
		return manifest.NewEmitter(os.Stdout).Emit(res.Plan)
	case "json":
		data, err := json.MarshalIndent(res.Plan, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding plan: %w", err)
		}
		data = append(data, '\n')
		if renderOut != "" {
			return os.WriteFile(renderOut, data, 0o644)
		}
		_, err = os.Stdout.Write(data)
		return err
	default:
		return fmt.Errorf("unknown output format %q", renderFormat)
	}
}
