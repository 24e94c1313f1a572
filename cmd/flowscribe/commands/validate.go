package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/flowscribe/flowscribe/cmd/flowscribe/opts"
	"github.com/flowscribe/flowscribe/pkg/schema"
)

// NewValidateCmd creates the validate command.
func NewValidateCmd(o *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a workflow file against the execution schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := o.Repository.Validate(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if result.OK {
				pterm.Success.Printfln("%s is a valid workflow", args[0])
				return nil
			}

			out := cmd.OutOrStdout()
			for _, v := range result.Violations {
				fmt.Fprintf(out, "%s %s\n", color.RedString(v.Path), v.Message)
			}

			// Exit non-zero so scripts can gate on validation.
			return errors.WithStack(&schema.ValidationError{Violations: result.Violations})
		},
	}

	return cmd
}
