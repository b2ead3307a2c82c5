package main

import (
	"bytes"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/Altinn/formpatch"
	"github.com/Altinn/formpatch/document"
	"github.com/Altinn/formpatch/patch"
)

func newMergeCmd(opts *globalOptions) *cobra.Command {
	var (
		prevPath    string
		nextPath    string
		currentPath string
		rowIDKey    string
		showDiff    bool
	)

	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Merge remote changes into a locally edited document",
		Long: `Merge the changes from --prev to --next into --current and print the
resulting document. Local edits win over conflicting remote changes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			prev, err := loadDocument(prevPath)
			if err != nil {
				return err
			}
			next, err := loadDocument(nextPath)
			if err != nil {
				return err
			}
			current, err := loadDocument(currentPath)
			if err != nil {
				return err
			}

			p := formpatch.CreatePatch(formpatch.Args{
				Prev:    prev,
				Next:    next,
				Current: current,
			}, opts.patchOptions(rowIDKey)...)
			opts.dumpPatch(cmd.ErrOrStderr(), p)

			final, err := patch.Apply(current, p)
			if err != nil {
				return err
			}
			if showDiff {
				return writeDocumentDiff(cmd.OutOrStdout(), current, final)
			}
			return writeJSON(cmd.OutOrStdout(), final)
		},
	}

	cmd.Flags().StringVar(&prevPath, "prev", "", "document the remote changes are based on")
	cmd.Flags().StringVar(&nextPath, "next", "", "document with the remote changes")
	cmd.Flags().StringVar(&currentPath, "current", "", "locally edited document")
	cmd.Flags().StringVar(&rowIDKey, "row-id-key", formpatch.DefaultRowIDKey, "object key holding a row's identity")
	cmd.Flags().BoolVar(&showDiff, "show-diff", false, "print a line diff of current and the merged document")
	_ = cmd.MarkFlagRequired("prev")
	_ = cmd.MarkFlagRequired("next")
	_ = cmd.MarkFlagRequired("current")
	return cmd
}

// writeDocumentDiff prints a line diff between the indented JSON forms of
// from and to.
func writeDocumentDiff(w io.Writer, from, to document.Value) error {
	var a, b bytes.Buffer
	if err := writeJSON(&a, from); err != nil {
		return err
	}
	if err := writeJSON(&b, to); err != nil {
		return err
	}

	dmp := diffmatchpatch.New()
	chars1, chars2, lines := dmp.DiffLinesToChars(a.String(), b.String())
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(chars1, chars2, false), lines)

	added := newColor(w, color.FgGreen)
	removed := newColor(w, color.FgRed)
	for _, d := range diffs {
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			var err error
			switch d.Type {
			case diffmatchpatch.DiffInsert:
				_, err = added.Fprint(w, "+ "+line)
			case diffmatchpatch.DiffDelete:
				_, err = removed.Fprint(w, "- "+line)
			default:
				_, err = io.WriteString(w, "  "+line)
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}
