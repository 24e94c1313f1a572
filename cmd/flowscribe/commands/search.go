package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/flowscribe/flowscribe/cmd/flowscribe/opts"
	"github.com/flowscribe/flowscribe/pkg/search"
)

// NewSearchCmd creates the search command.
func NewSearchCmd(o *opts.RootOpts) *cobra.Command {
	var (
		useRegex   bool
		glob       string
		maxResults int
	)

	cmd := &cobra.Command{
		Use:   "search <directory> <pattern>",
		Short: "Search workflow files for a literal or regex pattern",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fileGlob := glob
			if fileGlob == "" {
				fileGlob = o.Config.Pattern
			}

			warnings := 0
			matches, err := o.Repository.Search(cmd.Context(), search.Query{
				Root:     args[0],
				Pattern:  args[1],
				UseRegex: useRegex,
				Glob:     fileGlob,
				OnWarning: func(path string, err error) {
					warnings++
				},
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			found := 0
			for m := range matches {
				fmt.Fprintf(out, "%s:%d:%d: %s\n",
					color.CyanString(m.Path), m.Span.Line, m.Span.Start+1, m.LineText)
				found++
				if maxResults > 0 && found >= maxResults {
					break
				}
			}

			if warnings > 0 {
				pterm.Warning.Printfln("%d matches (%d files skipped)", found, warnings)
			} else {
				pterm.Info.Printfln("%d matches", found)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&useRegex, "regex", "r", false, "treat pattern as a regular expression")
	cmd.Flags().StringVarP(&glob, "pattern", "p", "", "file filter glob (default from config)")
	cmd.Flags().IntVar(&maxResults, "max-results", 0, "stop after this many matches (0 = unlimited)")

	return cmd
}
