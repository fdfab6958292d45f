package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quernbuild/quern/internal/archive"
	"github.com/quernbuild/quern/internal/fetch"
	"github.com/quernbuild/quern/internal/plan"
)

var (
	fetchPlatform string
	fetchPython   string
	fetchNumPy    string
	fetchCacheDir string
	fetchWorkers  int
	fetchUnpack   bool
	fetchWorkDir  string
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the recipe's source artifacts for one target",
	RunE:  runFetch,
}

func init() {
	fetchCmd.Flags().StringVar(&fetchPlatform, "platform", "", "Target platform triple (default: host platform)")
	fetchCmd.Flags().StringVar(&fetchPython, "python", "3.7", "Target python version")
	fetchCmd.Flags().StringVar(&fetchNumPy, "numpy", "", "Target numpy version")
	fetchCmd.Flags().StringVar(&fetchCacheDir, "cache-dir", "", "Artifact cache directory (default: ~/.quern/cache)")
	fetchCmd.Flags().IntVarP(&fetchWorkers, "workers", "w", 4, "Parallel download workers")
	fetchCmd.Flags().BoolVar(&fetchUnpack, "unpack", false, "Unpack supported archives into the work directory")
	fetchCmd.Flags().StringVar(&fetchWorkDir, "work-dir", "work", "Directory archives unpack into")
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	rec, err := loadRecipe()
	if err != nil {
		return err
	}
	cfg, err := loadVariants()
	if err != nil {
		return err
	}
	target, err := singleTarget(fetchPlatform, fetchPython, fetchNumPy)
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
	if len(res.Plan.Sources) == 0 {
		fmt.Println("nothing to fetch: recipe has no source artifacts")
		return nil
	}

	cacheDir := fetchCacheDir
	if cacheDir == "" {
		cacheDir, err = defaultCacheDir()
		if err != nil {
			return err
		}
	}

	jobs := make([]fetch.Job, len(res.Plan.Sources))
	for i, src := range res.Plan.Sources {
		jobs[i] = fetch.Job{URL: src.URL, SHA256: src.SHA256}
	}

	fetcher := fetch.NewFetcher(cacheDir, fetchWorkers, logger)
	results := fetcher.FetchAll(jobs)

	var firstErr error
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(os.Stderr, "failed: %s: %v\n", r.Job.URL, r.Err)
			if firstErr == nil {
				firstErr = r.Err
			}
			continue
		}
		status := "fetched"
		if r.Cached {
			status = "cached"
		}
		fmt.Printf("%s: %s -> %s\n", status, r.Job.URL, r.Path)
		if !fetchUnpack || !archive.Supported(r.Path) {
			continue
		}
		root, err := archive.Unpack(r.Path, fetchWorkDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed: %v\n", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		fmt.Printf("unpacked: %s\n", root)
	}
	return firstErr
}
