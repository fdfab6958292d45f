package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quernbuild/quern/internal/manifest"
	"github.com/quernbuild/quern/internal/plan"
)

var verifyCmd = &cobra.Command{
	Use:   "verify MANIFEST...",
	Short: "Check stored manifests against a fresh resolution of the recipe",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	rec, err := loadRecipe()
	if err != nil {
		return err
	}
	cfg, err := loadVariants()
	if err != nil {
		return err
	}

	var firstErr error
	for _, path := range args {
		stored, err := manifest.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed: %v\n", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		res, err := plan.Resolve(rec, stored.Target, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed: %s: %v\n", path, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		var checkErr error
		if res.Skipped {
			checkErr = &manifest.DriftError{Path: path, Stored: stored.Digest, Fresh: "none (target now skipped)"}
		} else {
			checkErr = manifest.Verify(path, stored, res.Plan)
		}
		if checkErr != nil {
			fmt.Fprintln(os.Stderr, checkErr)
			if firstErr == nil {
				firstErr = checkErr
			}
			continue
		}
		fmt.Printf("ok: %s\n", path)
	}
	return firstErr
}
