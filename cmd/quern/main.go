package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/quernbuild/quern/internal/exitcode"
	"github.com/quernbuild/quern/internal/metayaml"
	"github.com/quernbuild/quern/internal/platform"
	"github.com/quernbuild/quern/internal/recipe"
	"github.com/quernbuild/quern/internal/variant"
)

var (
	recipePath   string
	variantsPath string
	verbose      bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "quern",
	Short: "Renders conda-style recipes into concrete build plans",
	Long: `Quern resolves conda-style recipes: it expands the recipe template,
decides every trailing selector for a target, names compilers and
concretizes pins, and emits one reproducible build plan per target.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := zap.NewProductionConfig()
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		} else {
			cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
		}
		var err error
		logger, err = cfg.Build()
		if err != nil {
			return fmt.Errorf("building logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&recipePath, "recipe", "f", "meta.yaml", "Recipe path")
	rootCmd.PersistentFlags().StringVar(&variantsPath, "variants", "", "Variant config path (default: variants.yaml beside the recipe, if present)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "quern:", err)
		os.Exit(exitcode.FromError(err))
	}
}

func loadRecipe() (*recipe.Recipe, error) {
	return metayaml.NewParser().ParseFile(recipePath)
}

// loadVariants reads the configured variant file, falling back to a
// variants.yaml next to the recipe and then to the built-in defaults.
func loadVariants() (*variant.Config, error) {
	path := variantsPath
	if path == "" {
		candidate := filepath.Join(filepath.Dir(recipePath), "variants.yaml")
		if _, err := os.Stat(candidate); err != nil {
			return variant.Default(), nil
		}
		path = candidate
	}
	return variant.Load(path)
}

func singleTarget(triple, python, numpy string) (platform.Target, error) {
	if triple == "" {
		triple = platform.Host()
	}
	return platform.New(triple, python, numpy)
}

func defaultCacheDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locating home directory: %w", err)
	}
	return filepath.Join(home, ".quern", "cache"), nil
}
