package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/covenant-dev/covenant"
)

var watchCmd = &cobra.Command{
	Use:   "watch [paths...]",
	Short: "Re-prove contract files whenever they change",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Println("error: Please provide file or directory paths")
			os.Exit(1)
		}
		if err := watch(args); err != nil {
			logger.Error("Error watching paths", zap.Error(err))
			os.Exit(1)
		}
	},
}

func watch(paths []string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	for _, path := range paths {
		err := filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				return watcher.Add(p)
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("error adding path to watcher: %w", err)
		}
	}

	prover := covenant.NewProver(covenant.WithLogger(logger))
	fmt.Println("watching for changes...")
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Write == fsnotify.Write && isContractFile(event.Name) {
				// wait for a while after file change to consider multiple changes as one
				time.Sleep(100 * time.Millisecond)
				reprove(prover, event.Name)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("Watcher error", zap.Error(err))
		}
	}
}

func reprove(prover *covenant.Prover, path string) {
	f, err := covenant.LoadFile(path)
	if err != nil {
		refutedStyle.Printf("%s: %v\n", path, err)
		return
	}
	results := []fileResult{{Path: path, Conclusions: prover.ProveFile(f)}}
	printResults(logger, results, false, "")
}
