package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/inamate/diagrams/internal/diagram"
)

var validateCmd = &cobra.Command{
	Use:   "validate <spec.json...>",
	Short: "Checks spec files without drawing them",
	Long: `The validate command parses and normalizes one or more spec files and
reports the error kind and field of each one that would not draw.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng := newEngine()
		failed := 0
		for _, path := range args {
			if err := validateFile(eng.Validate, path); err != nil {
				failed++
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %s\n", failMark, path, describe(err))
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", okMark, path)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d specs invalid", failed, len(args))
		}
		return nil
	},
}

func validateFile(validate func(diagram.Spec) (diagram.Normalized, error), path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	spec, err := diagram.ParseSpec(data)
	if err != nil {
		return err
	}
	_, err = validate(spec)
	return err
}

// describe prints a render error as "Kind (field): reason".
func describe(err error) string {
	re := diagram.AsRenderError("", err)
	s := string(re.Kind)
	if re.Field != "" {
		s += " (" + re.Field + ")"
	}
	return s + ": " + dim(re.Reason)
}

func init() {
	AddCommand(validateCmd)
}
