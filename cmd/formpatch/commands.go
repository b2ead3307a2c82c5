package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/sanity-io/litter"
	"github.com/spf13/cobra"

	"github.com/Altinn/formpatch"
	"github.com/Altinn/formpatch/document"
	"github.com/Altinn/formpatch/patch"
)

// globalOptions are the flags shared by every command.
type globalOptions struct {
	verbose bool
	dump    bool
	logger  *slog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "formpatch",
		Short: "Compute and apply JSON Patches between form data documents",
		Long: `formpatch compares versions of a form data document and produces
JSON Patch operations. Rows carrying a row identity are matched by identity,
and a third, locally edited document can be given to merge remote changes
without overwriting local edits.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if opts.verbose {
				level = slog.LevelDebug
			}
			opts.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log dropped changes and array fallbacks")
	rootCmd.PersistentFlags().BoolVar(&opts.dump, "dump", false, "dump the computed patch to stderr as Go values")

	rootCmd.AddCommand(
		newDiffCmd(opts),
		newApplyCmd(opts),
		newMergeCmd(opts),
	)
	return rootCmd
}

func (o *globalOptions) patchOptions(rowIDKey string) []formpatch.Option {
	return []formpatch.Option{
		formpatch.WithLogger(o.logger),
		formpatch.WithRowIDKey(rowIDKey),
	}
}

// dumpedOperation is an Operation with its value converted to plain Go
// values, which dump more readably than the ordered document types.
type dumpedOperation struct {
	Op    string
	Path  string
	Value any
}

func (o *globalOptions) dumpPatch(w io.Writer, p patch.Patch) {
	if !o.dump {
		return
	}
	ops := make([]dumpedOperation, len(p))
	for i, op := range p {
		ops[i] = dumpedOperation{Op: string(op.Op), Path: op.Path}
		if op.Value != nil {
			ops[i].Value = document.Native(op.Value)
		}
	}
	fmt.Fprintln(w, litter.Sdump(ops))
}
