package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quernbuild/quern/internal/plan"
)

var (
	validatePlatform string
	validatePython   string
	validateNumPy    string
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check that the recipe resolves cleanly for one target",
	RunE:  runValidate,
}

func init() {
	validateCmd.Flags().StringVar(&validatePlatform, "platform", "", "Target platform triple (default: host platform)")
	validateCmd.Flags().StringVar(&validatePython, "python", "3.7", "Target python version")
	validateCmd.Flags().StringVar(&validateNumPy, "numpy", "", "Target numpy version")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	rec, err := loadRecipe()
	if err != nil {
		return err
	}
	cfg, err := loadVariants()
	if err != nil {
		return err
	}
	target, err := singleTarget(validatePlatform, validatePython, validateNumPy)
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
	fmt.Printf("ok: %s %s %s %s\n", res.Plan.Package, res.Plan.Version, target, res.Plan.BuildString)
	return nil
}
