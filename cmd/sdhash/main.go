// Command sdhash prints perceptual fingerprints of image files and can
// group the ones that are duplicates of each other.
package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"sdhash/internal/config"
	"sdhash/internal/imageprocessing"
	"sdhash/pkg/logger"
)

type fileResult struct {
	path string
	fp   imageprocessing.Fingerprint
	kind imageprocessing.Kind
	err  error
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	flags := pflag.NewFlagSet("sdhash", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	profile := flags.StringP("profile", "p", "", "TOML hasher profile")
	workers := flags.IntP("workers", "w", 4, "Number of files fingerprinted concurrently")
	dupes := flags.BoolP("dupes", "d", false, "Only print groups of duplicate files")
	logLevel := flags.String("log-level", "warn", "Log level")
	flags.Usage = func() {
		fmt.Fprintln(stderr, "Usage: sdhash [options] path [path...]")
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		return 2
	}
	if flags.NArg() == 0 {
		flags.Usage()
		return 2
	}

	log, err := logger.New(*logLevel, "")
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	defer log.Sync()

	cfg, err := config.LoadProfile(*profile)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	hasher, err := imageprocessing.NewHasher(cfg)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	files, err := collectFiles(flags.Args())
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	results, err := fingerprintFiles(context.Background(), hasher, files, *workers)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	failed := 0
	for _, r := range results {
		if r.err != nil {
			failed++
			log.Warn("cannot compute fingerprint", zap.String("path", r.path), zap.Error(r.err))
		}
	}

	if *dupes {
		printDuplicates(stdout, groupDuplicates(results))
	} else {
		for _, r := range results {
			if r.err == nil {
				fmt.Fprintf(stdout, "%s  %s  %s\n", r.fp, r.kind, r.path)
			}
		}
	}

	if failed > 0 {
		return 1
	}
	return 0
}

// collectFiles expands directories into the image files below them.
// Files named explicitly are kept whatever their extension.
func collectFiles(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, errors.Wrapf(err, "cannot access %s", p)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && imageprocessing.IsImageFile(d.Name()) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, errors.Wrapf(err, "cannot walk %s", p)
		}
	}
	return files, nil
}

// fingerprintFiles hashes files on up to workers goroutines. Results keep
// the order of files; per-file failures are reported in the result.
func fingerprintFiles(ctx context.Context, hasher *imageprocessing.Hasher, files []string, workers int) ([]fileResult, error) {
	if workers < 1 {
		workers = 1
	}
	results := make([]fileResult, len(files))

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(workers)
	for i, path := range files {
		i, path := i, path
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = fingerprintFile(hasher, path)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func fingerprintFile(hasher *imageprocessing.Hasher, path string) fileResult {
	data, err := os.ReadFile(path)
	if err != nil {
		return fileResult{path: path, err: err}
	}
	src, _, err := imageprocessing.DecodeFrames(bytes.NewReader(data))
	if err != nil {
		return fileResult{path: path, err: err}
	}
	fp, kind, err := hasher.FingerprintKind(src)
	return fileResult{path: path, fp: fp, kind: kind, err: err}
}

// groupDuplicates returns the paths sharing a fingerprint, two or more per
// group, sorted by their first path.
func groupDuplicates(results []fileResult) [][]string {
	byFingerprint := make(map[imageprocessing.Fingerprint][]string)
	for _, r := range results {
		if r.err == nil {
			byFingerprint[r.fp] = append(byFingerprint[r.fp], r.path)
		}
	}

	var groups [][]string
	for _, paths := range byFingerprint {
		if len(paths) < 2 {
			continue
		}
		sort.Strings(paths)
		groups = append(groups, paths)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i][0] < groups[j][0] })
	return groups
}

func printDuplicates(w io.Writer, groups [][]string) {
	header := color.New(color.FgYellow, color.Bold)
	for i, paths := range groups {
		header.Fprintf(w, "group %d (%d files)\n", i+1, len(paths))
		for _, p := range paths {
			fmt.Fprintf(w, "  %s\n", p)
		}
	}
	if len(groups) == 0 {
		color.New(color.FgGreen).Fprintln(w, "no duplicates found")
	}
}
