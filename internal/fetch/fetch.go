// Package fetch downloads recipe source artifacts into a local cache
// and verifies their checksums.
package fetch

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Job is one source artifact to fetch. SHA256 may be empty, in which
// case the artifact is accepted as delivered.
type Job struct {
	URL    string
	SHA256 string
}

// Result is the outcome of one fetch.
type Result struct {
	Job    Job
	Path   string
	Cached bool
	Err    error
}

// ChecksumError reports a downloaded artifact whose sha256 does not
// match the recipe.
type ChecksumError struct {
	URL  string
	Want string
	Got  string
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("downloading %s: sha256 mismatch: want %s, got %s", e.URL, e.Want, e.Got)
}

// HTTPError reports a non-200 response for a source URL.
type HTTPError struct {
	URL    string
	Status int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("downloading %s: HTTP %d", e.URL, e.Status)
}

// Fetcher handles parallel source downloads with a shared cache.
type Fetcher struct {
	cacheDir string
	workers  int
	client   *http.Client
	logger   *zap.Logger
}

// NewFetcher creates a fetcher writing into cacheDir. A nil logger
// disables logging.
func NewFetcher(cacheDir string, workers int, logger *zap.Logger) *Fetcher {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		cacheDir: cacheDir,
		workers:  workers,
		client:   &http.Client{Timeout: 10 * time.Minute},
		logger:   logger,
	}
}

// FetchAll downloads multiple artifacts in parallel. Results keep the
// order of jobs.
func (f *Fetcher) FetchAll(jobs []Job) []Result {
	results := make([]Result, len(jobs))
	if err := os.MkdirAll(f.cacheDir, 0755); err != nil {
		for i, job := range jobs {
			results[i] = Result{Job: job, Err: err}
		}
		return results
	}

	type indexed struct {
		i   int
		job Job
	}
	jobChan := make(chan indexed, len(jobs))

	var wg sync.WaitGroup
	for i := 0; i < f.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for in := range jobChan {
				results[in.i] = f.fetchOne(in.job)
			}
		}()
	}

	for i, job := range jobs {
		jobChan <- indexed{i: i, job: job}
	}
	close(jobChan)
	wg.Wait()

	return results
}

func (f *Fetcher) fetchOne(job Job) Result {
	dest := f.CachePath(job.URL)

	// A cache entry counts only if its checksum still matches.
	if _, err := os.Stat(dest); err == nil {
		if job.SHA256 == "" {
			f.logger.Debug("cache hit", zap.String("url", job.URL))
			return Result{Job: job, Path: dest, Cached: true}
		}
		sum, err := fileSHA256(dest)
		if err == nil && sum == job.SHA256 {
			f.logger.Debug("cache hit", zap.String("url", job.URL))
			return Result{Job: job, Path: dest, Cached: true}
		}
		f.logger.Warn("stale cache entry, refetching",
			zap.String("url", job.URL),
			zap.String("path", dest))
		os.Remove(dest)
	}

	if err := f.download(job, dest); err != nil {
		return Result{Job: job, Err: err}
	}
	return Result{Job: job, Path: dest}
}

func (f *Fetcher) download(job Job, dest string) error {
	f.logger.Info("downloading", zap.String("url", job.URL))

	resp, err := f.client.Get(job.URL)
	if err != nil {
		return fmt.Errorf("downloading %s: %w", job.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &HTTPError{URL: job.URL, Status: resp.StatusCode}
	}

	// Write to temp file first, then rename.
	tmpPath := dest + ".tmp"
	out, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}

	hasher := sha256.New()
	_, err = io.Copy(io.MultiWriter(out, hasher), resp.Body)
	out.Close()
	if err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing file: %w", err)
	}

	if job.SHA256 != "" {
		sum := hex.EncodeToString(hasher.Sum(nil))
		if sum != job.SHA256 {
			os.Remove(tmpPath)
			return &ChecksumError{URL: job.URL, Want: job.SHA256, Got: sum}
		}
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming file: %w", err)
	}
	return nil
}

// CacheDir returns the cache directory.
func (f *Fetcher) CacheDir() string {
	return f.cacheDir
}

// CachePath returns where an artifact URL lands in the cache. The name
// is the last path element with any query stripped.
func (f *Fetcher) CachePath(rawURL string) string {
	name := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		name = u.Path
	}
	return filepath.Join(f.cacheDir, path.Base(name))
}

func fileSHA256(p string) (string, error) {
	f, err := os.Open(p)
	if err != nil {
		return "", err
	}
	defer f.Close()
	hasher := sha256.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}
