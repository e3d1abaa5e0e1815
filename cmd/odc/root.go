// odc evaluates how well language models classify software defects with
// Orthogonal Defect Classification, against a human-labeled ground truth.
//
// Usage:
//
//	odc classify  [--models=qwen3:8b,...]       ask models about every ground-truth commit
//	odc extract   [--responses=output]          response tree -> output.csv
//	odc score     [--records=data/output.csv]   accuracy tables per model
//	odc matrix    [--category=type+qualifier]   confusion matrices and metrics
//	odc crosstab  [--percent]                   label frequencies per model
//	odc evaluate                                all of the above, stored as a run
//	odc runs      list | show <id>
//	odc serve                                   MCP server over stdio
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/DiogoHD/LLM-and-ODC/internal/config"
	"github.com/DiogoHD/LLM-and-ODC/internal/format"
	"github.com/DiogoHD/LLM-and-ODC/internal/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	configPath string
	logLevel   string
	logFormat  string
	format     string
}

// cfg is loaded before any subcommand runs.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "odc",
	Short: "Evaluate LLM defect classification against ground truth",
	Long: `odc asks language models to classify vulnerability-fixing commits with
Orthogonal Defect Classification (Defect Type and Defect Qualifier), extracts
the classifications from their free-text answers and scores them against a
human-labeled spreadsheet.`,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootFlags.configPath, "config", "", "Path to a YAML config file (default: $ODC_CONFIG)")
	pf.StringVar(&rootFlags.logLevel, "log-level", "", "Log level: debug, info, warn, error (default from config)")
	pf.StringVar(&rootFlags.logFormat, "log-format", "", "Log format: text or json (default from config)")
	pf.StringVar(&rootFlags.format, "format", "ascii", "Table format: ascii, markdown or csv")

	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(matrixCmd)
	rootCmd.AddCommand(crosstabCmd)
	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.Version = version
}

func setup(cmd *cobra.Command, _ []string) error {
	path := rootFlags.configPath
	if path == "" {
		path = os.Getenv("ODC_CONFIG")
	}
	c, err := config.Load(path)
	if err != nil {
		return err
	}
	if rootFlags.logLevel != "" {
		c.Log.Level = rootFlags.logLevel
	}
	if rootFlags.logFormat != "" {
		c.Log.Format = rootFlags.logFormat
	}
	level, err := logging.ParseLevel(c.Log.Level)
	if err != nil {
		return err
	}
	if f := strings.ToLower(c.Log.Format); f != "text" && f != "json" {
		return fmt.Errorf("invalid log format: %s (must be text or json)", c.Log.Format)
	}
	if _, err := format.ParseMode(rootFlags.format); err != nil {
		return err
	}
	logging.Init(level, c.Log.Format, cmd.ErrOrStderr())
	cfg = c
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
