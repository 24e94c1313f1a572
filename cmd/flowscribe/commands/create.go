package commands

import (
	"io"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/flowscribe/flowscribe/cmd/flowscribe/opts"
)

// NewCreateCmd creates the create command.
func NewCreateCmd(o *opts.RootOpts) *cobra.Command {
	var (
		content     string
		contentFile string
	)

	cmd := &cobra.Command{
		Use:   "create <file>",
		Short: "Create a new workflow file from validated content",
		Long: `Create writes a new workflow file. The content is validated against the
workflow schema first; on any violation nothing is written. The target
path must not already exist.

Content comes from --content, --file, or stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readContent(cmd, content, contentFile)
			if err != nil {
				return err
			}

			if _, err := o.Repository.Create(cmd.Context(), args[0], data); err != nil {
				return err
			}

			pterm.Success.Printfln("created %s", args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&content, "content", "", "workflow content as a string")
	cmd.Flags().StringVar(&contentFile, "file", "", "read workflow content from a file")
	cmd.MarkFlagsMutuallyExclusive("content", "file")

	return cmd
}

func readContent(cmd *cobra.Command, content, contentFile string) ([]byte, error) {
	switch {
	case content != "":
		return []byte(content), nil
	case contentFile != "":
		data, err := os.ReadFile(contentFile)
		if err != nil {
			return nil, errors.Errorf("reading content file: %w", err)
		}
		return data, nil
	default:
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, errors.Errorf("reading stdin: %w", err)
		}
		return data, nil
	}
}
