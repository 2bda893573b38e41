package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/inamate/diagrams/internal/diagram"
	"github.com/inamate/diagrams/internal/engine"
	"github.com/inamate/diagrams/internal/render"
)

var (
	renderOut       string
	renderFormat    string
	renderCaption   string
	renderKeepGoing bool
)

var renderCmd = &cobra.Command{
	Use:   "render <spec.json>",
	Short: "Renders a spec to SVG, PNG or PDF",
	Long: `The render command draws one spec file. The format comes from --format or
the extension of --out, and defaults to SVG on stdout. A spec that cannot be
drawn exits non-zero unless --placeholder is set, in which case the error
placeholder is written instead.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		spec, err := diagram.ParseSpec(data)
		if err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}
		if renderCaption != "" {
			spec.Caption = renderCaption
		}

		name := renderFormat
		if name == "" && renderOut != "" {
			name = filepath.Ext(renderOut)
		}
		format, err := render.ParseFormat(name)
		if err != nil {
			return err
		}

		res, err := newEngine().Render(spec)
		if err != nil {
			if !renderKeepGoing {
				return err
			}
			fmt.Fprintf(os.Stderr, "%s %s\n", failMark, err)
			res = engine.Placeholder(err)
		}

		out := os.Stdout
		if renderOut != "" && renderOut != "-" {
			f, err := os.Create(renderOut)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}
		if err := render.Write(out, res, format); err != nil {
			return err
		}
		if out != os.Stdout {
			fmt.Fprintf(os.Stderr, "%s %s %s\n", okMark, renderOut, dim(strings.ToUpper(string(format))))
		}
		return nil
	},
}

func init() {
	AddCommand(renderCmd)
	renderCmd.Flags().StringVarP(&renderOut, "out", "o", "", "Output file (default stdout)")
	renderCmd.Flags().StringVar(&renderFormat, "format", "", "Output format: svg, png or pdf")
	renderCmd.Flags().StringVar(&renderCaption, "caption", "", "Override the spec caption")
	renderCmd.Flags().BoolVar(&renderKeepGoing, "placeholder", false, "Write the error placeholder instead of failing")
}
