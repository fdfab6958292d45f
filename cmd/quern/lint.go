package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quernbuild/quern/internal/recipe"
)

var lintStrict bool

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Check the recipe for structural problems on all targets",
	RunE:  runLint,
}

func init() {
	lintCmd.Flags().BoolVar(&lintStrict, "strict", false, "Treat warnings as errors")
	rootCmd.AddCommand(lintCmd)
}

func runLint(cmd *cobra.Command, args []string) error {
	rec, err := loadRecipe()
	if err != nil {
		return err
	}

	problems := recipe.Lint(rec)
	failing := 0
	for _, p := range problems {
		fmt.Printf("%s: %s: %s\n", p.Severity, p.Field, p.Msg)
		if p.Severity == recipe.SeverityError || lintStrict {
			failing++
		}
	}
	if failing > 0 {
		return &recipe.LintError{Problems: failing}
	}
	if len(problems) > 0 {
		fmt.Printf("ok: %d warning(s)\n", len(problems))
	} else {
		fmt.Println("ok: no problems found")
	}
	return nil
}
