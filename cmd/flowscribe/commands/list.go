package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/flowscribe/flowscribe/cmd/flowscribe/opts"
	"github.com/flowscribe/flowscribe/pkg/repository"
)

// NewListCmd creates the list command.
func NewListCmd(o *opts.RootOpts) *cobra.Command {
	var pattern string

	cmd := &cobra.Command{
		Use:   "list [directory]",
		Short: "List workflow files with their validation status",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := o.Config.Root
			if len(args) > 0 {
				dir = args[0]
			}
			glob := pattern
			if glob == "" {
				glob = o.Config.Pattern
			}

			entries, err := o.Repository.List(cmd.Context(), dir, glob)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			invalid := 0
			for _, entry := range entries {
				fmt.Fprintf(out, "%s %-50s %8d  %s\n",
					statusGlyph(entry.Status), entry.Path, entry.Size, entry.StatusName)
				for _, v := range entry.Violations {
					fmt.Fprintf(out, "    %s\n", color.RedString(v.String()))
				}
				if entry.Error != "" {
					fmt.Fprintf(out, "    %s\n", color.YellowString(entry.Error))
				}
				if entry.Status != repository.StatusValid {
					invalid++
				}
			}

			if invalid > 0 {
				pterm.Warning.Printfln("%d of %d workflows are not valid", invalid, len(entries))
			} else {
				pterm.Success.Printfln("%d workflows, all valid", len(entries))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&pattern, "pattern", "p", "", "discovery glob (default from config)")

	return cmd
}

// statusGlyph mirrors the status symbols used across the console output.
func statusGlyph(status repository.FileStatus) string {
	switch status {
	case repository.StatusValid:
		return color.GreenString("✓")
	case repository.StatusInvalid:
		return color.RedString("✗")
	default:
		return color.YellowString("-")
	}
}
