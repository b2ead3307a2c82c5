package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Altinn/formpatch"
	"github.com/Altinn/formpatch/document"
)

func newDiffCmd(opts *globalOptions) *cobra.Command {
	var (
		prevPath    string
		nextPath    string
		currentPath string
		rowIDKey    string
		format      string
	)

	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Compute the patch from one document to another",
		Long: `Compute the JSON Patch that turns --prev into --next.

With --current the patch is computed for the locally edited document instead:
remote changes that conflict with local edits are left out.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "json" && format != "text" {
				return fmt.Errorf("unknown format %q", format)
			}

			prev, err := loadDocument(prevPath)
			if err != nil {
				return err
			}
			next, err := loadDocument(nextPath)
			if err != nil {
				return err
			}
			var current document.Value
			if currentPath != "" {
				if current, err = loadDocument(currentPath); err != nil {
					return err
				}
			}

			p := formpatch.CreatePatch(formpatch.Args{
				Prev:    prev,
				Next:    next,
				Current: current,
			}, opts.patchOptions(rowIDKey)...)
			opts.dumpPatch(cmd.ErrOrStderr(), p)

			if format == "text" {
				return writePatchText(cmd.OutOrStdout(), p)
			}
			return writeJSON(cmd.OutOrStdout(), p)
		},
	}

	cmd.Flags().StringVar(&prevPath, "prev", "", "previous document (JSON or YAML)")
	cmd.Flags().StringVar(&nextPath, "next", "", "next document (JSON or YAML)")
	cmd.Flags().StringVar(&currentPath, "current", "", "locally edited document, enables three-way mode")
	cmd.Flags().StringVar(&rowIDKey, "row-id-key", formpatch.DefaultRowIDKey, "object key holding a row's identity")
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json or text")
	_ = cmd.MarkFlagRequired("prev")
	_ = cmd.MarkFlagRequired("next")
	return cmd
}
