package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"github.com/covenant-dev/covenant"
)

var (
	provedStyle      = color.New(color.FgGreen, color.Bold)
	refutedStyle     = color.New(color.FgRed, color.Bold)
	unknownStyle     = color.New(color.FgYellow, color.Bold)
	unsupportedStyle = color.New(color.FgMagenta, color.Bold)
	fileStyle        = color.New(color.FgCyan, color.Bold)
	detailStyle      = color.New(color.Faint)
)

func printResults(logger *zap.Logger, results []fileResult, isJSON bool, jsonOutput string) {
	if isJSON {
		printJSON(logger, results, jsonOutput)
		return
	}
	for _, r := range results {
		fileStyle.Println(r.Path)
		if r.Err != "" {
			refutedStyle.Printf("  error: %s\n", r.Err)
			continue
		}
		for _, c := range r.Conclusions {
			fmt.Printf("  %s %s\n", statusStyle(c.Status).Sprintf("%-11s", c.Status), c.Func)
			if c.Reason != "" {
				detailStyle.Printf("    %s\n", c.Reason)
			}
			for _, f := range c.Findings {
				if f.Status == covenant.StatusProved {
					continue
				}
				detailStyle.Printf("    %s %s: %s\n", f.Status, f.Kind, f.Text)
				if f.Counterexample != "" {
					detailStyle.Printf("      counterexample: %s\n", f.Counterexample)
				}
			}
		}
	}
}

func statusStyle(s covenant.Status) *color.Color {
	switch s {
	case covenant.StatusProved:
		return provedStyle
	case covenant.StatusRefuted:
		return refutedStyle
	case covenant.StatusUnsupported:
		return unsupportedStyle
	default:
		return unknownStyle
	}
}

func printJSON(logger *zap.Logger, results []fileResult, jsonOutput string) {
	d, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		logger.Error("Error marshalling results to JSON", zap.Error(err))
		return
	}
	if jsonOutput == "" {
		fmt.Println(string(d))
		return
	}
	f, err := os.Create(jsonOutput)
	if err != nil {
		logger.Error("Error creating JSON output file", zap.Error(err))
		return
	}
	defer f.Close()
	if _, err = f.Write(d); err != nil {
		logger.Error("Error writing JSON output file", zap.Error(err))
	}
}
