package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/inamate/diagrams/internal/gallery"
	"github.com/inamate/diagrams/internal/render"
)

var (
	galleryDir    string
	galleryFormat string
	galleryList   bool
)

var galleryCmd = &cobra.Command{
	Use:   "gallery [name...]",
	Short: "Writes the sample lesson diagrams",
	Long: `The gallery command renders the built-in sample diagrams, one file per
sample, into --dir. Name samples to write only those, or use --list to see them.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if galleryList {
			for _, s := range gallery.Samples() {
				fmt.Fprintf(out, "%-26s %-26s %s\n", s.Name, s.Spec.Tool, dim(s.Title))
			}
			return nil
		}

		format, err := render.ParseFormat(galleryFormat)
		if err != nil {
			return err
		}
		samples := gallery.Samples()
		if len(args) > 0 {
			samples = samples[:0]
			for _, name := range args {
				s, ok := gallery.Find(name)
				if !ok {
					return fmt.Errorf("no sample named %q", name)
				}
				samples = append(samples, s)
			}
		}
		if err := os.MkdirAll(galleryDir, 0755); err != nil {
			return err
		}

		eng := newEngine()
		for _, s := range samples {
			res, err := eng.Render(s.Spec)
			if err != nil {
				return fmt.Errorf("sample %s: %w", s.Name, err)
			}
			path := filepath.Join(galleryDir, s.Name+format.Extension())
			if err := writeFile(path, func(f *os.File) error { return render.Write(f, res, format) }); err != nil {
				return err
			}
			fmt.Fprintf(out, "%s %s\n", okMark, path)
		}
		return nil
	},
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func init() {
	AddCommand(galleryCmd)
	galleryCmd.Flags().StringVarP(&galleryDir, "dir", "d", "gallery", "Output directory")
	galleryCmd.Flags().StringVarP(&galleryFormat, "format", "f", "svg", "Output format: svg, png or pdf")
	galleryCmd.Flags().BoolVar(&galleryList, "list", false, "List the samples instead of writing them")
}
