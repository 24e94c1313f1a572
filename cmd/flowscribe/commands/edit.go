package commands

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/flowscribe/flowscribe/cmd/flowscribe/opts"
	"github.com/flowscribe/flowscribe/pkg/editor"
	"github.com/flowscribe/flowscribe/pkg/repository"
)

// NewEditCmd creates the edit command.
func NewEditCmd(o *opts.RootOpts) *cobra.Command {
	var (
		replaceAll bool
		showDiff   bool
		backup     bool
	)

	cmd := &cobra.Command{
		Use:   "edit <file> <old-text> <new-text>",
		Short: "Replace exact text in a workflow file",
		Long: `Edit replaces an exact occurrence of old-text with new-text.

The old text must occur exactly once in the file; if it occurs more than
once the edit fails and nothing is written, unless --all requests bulk
replacement. Edits that would leave a workflow file structurally invalid
are rejected.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			var before []byte
			if showDiff {
				data, err := os.ReadFile(path)
				if err != nil {
					return errors.Errorf("reading %s: %w", path, err)
				}
				before = data
			}

			result, err := o.Repository.Edit(cmd.Context(), path, editor.Request{
				OldText:    args[1],
				NewText:    args[2],
				ReplaceAll: replaceAll,
			}, repository.EditOptions{
				Backup: backup || o.Config.Backup,
			})
			if err != nil {
				return err
			}

			if showDiff {
				after, err := os.ReadFile(path)
				if err != nil {
					return errors.Errorf("reading %s: %w", path, err)
				}
				dmp := diffmatchpatch.New()
				diffs := dmp.DiffMain(string(before), string(after), false)
				fmt.Fprintln(cmd.OutOrStdout(), dmp.DiffPrettyText(diffs))
			}

			pterm.Success.Printfln("%s: %d replacement(s)", result.Path, result.Replacements)
			return nil
		},
	}

	cmd.Flags().BoolVar(&replaceAll, "all", false, "replace every occurrence instead of requiring a unique match")
	cmd.Flags().BoolVar(&showDiff, "diff", false, "print a diff of the applied change")
	cmd.Flags().BoolVar(&backup, "backup", false, "write a .bak copy of the file before editing")

	return cmd
}
