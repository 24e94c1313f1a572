package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flowscribe/flowscribe/cmd/flowscribe/opts"
)

// NewReadCmd creates the read command.
func NewReadCmd(o *opts.RootOpts) *cobra.Command {
	var (
		fromLine int
		toLine   int
	)

	cmd := &cobra.Command{
		Use:   "read <file>",
		Short: "Print a workflow file with line numbers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := o.Repository.Read(cmd.Context(), args[0], fromLine, toLine)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, line := range result.Lines {
				fmt.Fprintf(out, "%5d\t%s\n", line.Number, line.Text)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&fromLine, "from", 0, "first line to print (1-based, inclusive)")
	cmd.Flags().IntVar(&toLine, "to", 0, "last line to print (1-based, inclusive)")

	return cmd
}
