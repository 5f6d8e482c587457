package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/covenant-dev/covenant"
	"github.com/covenant-dev/covenant/internal/cache"
)

var (
	proveJSONOutput bool
	outPath         string
	noCache         bool
)

var proveCmd = &cobra.Command{
	Use:   "prove [paths...]",
	Short: "Prove the contracts in the given files or directories",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Println("error: Please provide file or directory paths")
			os.Exit(1)
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		var results []fileResult
		runWithTimeout(ctx, func() {
			results = proveAll(args)
		})
		printResults(logger, results, proveJSONOutput, outPath)

		if !allProved(results) {
			os.Exit(1)
		}
	},
}

func init() {
	proveCmd.Flags().BoolVar(&proveJSONOutput, "json", false, "Output results in JSON format")
	proveCmd.Flags().StringVarP(&outPath, "output", "o", "", "Output path (when using JSON)")
	proveCmd.Flags().BoolVar(&noCache, "no-cache", false, "Reprove every file, ignoring cached conclusions")
}

// fileResult pairs a contract file with the conclusions proved from it.
type fileResult struct {
	Path        string                 `json:"path"`
	Err         string                 `json:"error,omitempty"`
	Conclusions []*covenant.Conclusion `json:"conclusions,omitempty"`
}

func proveAll(paths []string) []fileResult {
	files, err := collectFiles(paths)
	if err != nil {
		logger.Error("Error collecting contract files", zap.Error(err))
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Println("error: no contract files found")
		os.Exit(1)
	}

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetDescription("proving"),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))

	store := openCache()
	prover := covenant.NewProver(covenant.WithLogger(logger))
	results := make([]fileResult, 0, len(files))
	for _, path := range files {
		r := fileResult{Path: path}
		if store != nil {
			if concls, ok := store.Get(path); ok {
				r.Conclusions = concls
				results = append(results, r)
				_ = bar.Add(1)
				continue
			}
		}
		f, err := covenant.LoadFile(path)
		if err != nil {
			r.Err = err.Error()
		} else {
			r.Conclusions = prover.ProveFile(f)
			if store != nil {
				if err := store.Set(path, r.Conclusions); err != nil {
					logger.Debug("could not cache conclusions", zap.Error(err))
				}
			}
		}
		results = append(results, r)
		_ = bar.Add(1)
	}
	fmt.Println()
	return results
}

// openCache returns nil when caching is disabled or unavailable; the
// prover then just reproves everything.
func openCache() *cache.Cache {
	if noCache {
		return nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return nil
	}
	store, err := cache.New(filepath.Join(base, "covenant"))
	if err != nil {
		logger.Debug("proof cache unavailable", zap.Error(err))
		return nil
	}
	return store
}

// collectFiles expands the given paths into the contract files beneath
// them.
func collectFiles(paths []string) ([]string, error) {
	var out []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			out = append(out, path)
			continue
		}
		err = filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !info.IsDir() && isContractFile(p) {
				out = append(out, p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func isContractFile(path string) bool {
	return strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml")
}

func allProved(results []fileResult) bool {
	for _, r := range results {
		if r.Err != "" {
			return false
		}
		for _, c := range r.Conclusions {
			if c.Status != covenant.StatusProved {
				return false
			}
		}
	}
	return true
}

func runWithTimeout(ctx context.Context, f func()) {
	done := make(chan struct{})
	go func() {
		f()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		fmt.Println("error: proving timed out")
		os.Exit(1)
	}
}
