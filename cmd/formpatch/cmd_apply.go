package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/Altinn/formpatch/patch"
)

func newApplyCmd(opts *globalOptions) *cobra.Command {
	var docPath, patchPath string

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply a patch to a document",
		Long: `Apply a JSON Patch to a document with a standard RFC 6902 implementation
and print the result.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := loadDocument(docPath)
			if err != nil {
				return err
			}
			p, err := loadPatch(patchPath)
			if err != nil {
				return err
			}
			opts.dumpPatch(cmd.ErrOrStderr(), p)

			data, err := json.Marshal(doc)
			if err != nil {
				return err
			}
			out, err := patch.ApplyJSON(data, p)
			if err != nil {
				return err
			}
			opts.logger.Debug("patch applied", "operations", len(p))
			return writeJSON(cmd.OutOrStdout(), json.RawMessage(out))
		},
	}

	cmd.Flags().StringVar(&docPath, "doc", "", "document to patch (JSON or YAML)")
	cmd.Flags().StringVar(&patchPath, "patch", "", "patch to apply (JSON or YAML)")
	_ = cmd.MarkFlagRequired("doc")
	_ = cmd.MarkFlagRequired("patch")
	return cmd
}
