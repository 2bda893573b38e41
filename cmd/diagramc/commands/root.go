package commands

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/inamate/diagrams/internal/engine"
	"github.com/inamate/diagrams/internal/logging"
)

var (
	logLevel   string
	plotWidth  float64
	plotHeight float64
)

var (
	okMark   = color.New(color.FgGreen).Sprint("✓")
	failMark = color.New(color.FgRed, color.Bold).Sprint("✗")
	dim      = color.New(color.Faint).SprintFunc()
)

var rootCmd = &cobra.Command{
	Use:   "diagramc",
	Short: "diagramc renders lesson diagram specs",
	Long: `diagramc validates and renders declarative lesson diagram specs
(triangles, graphs, charts, number lines, fraction bars, algebra) to SVG,
PNG or PDF without a server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logging.Setup(logLevel, "pretty")
	},
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Float64Var(&plotWidth, "plot-width", 0, "Width of coordinate-plane diagrams (0 keeps the default)")
	rootCmd.PersistentFlags().Float64Var(&plotHeight, "plot-height", 0, "Height of coordinate-plane diagrams (0 keeps the default)")
}

// AddCommand allows adding subcommands from other files.
func AddCommand(cmd *cobra.Command) {
	rootCmd.AddCommand(cmd)
}

// newEngine builds the engine for one invocation. A CLI run is one page, so
// every spec of the run shares its cache.
func newEngine() *engine.Engine {
	return engine.New(engine.Options{PlotWidth: plotWidth, PlotHeight: plotHeight})
}
