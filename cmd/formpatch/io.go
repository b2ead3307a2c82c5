package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/Altinn/formpatch/document"
	"github.com/Altinn/formpatch/patch"
)

// loadDocument reads a document from path. Files ending in .yaml or .yml are
// decoded as YAML, anything else as JSON.
func loadDocument(path string) (document.Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var v document.Value
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		v, err = document.ParseYAML(data)
	default:
		v, err = document.ParseJSON(data)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return v, nil
}

// loadPatch reads a patch from path, in JSON or YAML like loadDocument.
func loadPatch(path string) (patch.Patch, error) {
	v, err := loadDocument(path)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	p, err := patch.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return p, nil
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return err
	}
	buf.WriteByte('\n')
	_, err = w.Write(buf.Bytes())
	return err
}

// isTerminal reports whether w is a terminal, in which case text output is
// coloured.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func newColor(w io.Writer, attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if isTerminal(w) {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

var opColors = map[patch.OperationType]color.Attribute{
	patch.OperationTypeAdd:     color.FgGreen,
	patch.OperationTypeRemove:  color.FgRed,
	patch.OperationTypeReplace: color.FgYellow,
	patch.OperationTypeTest:    color.FgCyan,
}

func writePatchText(w io.Writer, p patch.Patch) error {
	for _, op := range p {
		if _, err := newColor(w, opColors[op.Op]).Fprintln(w, op.String()); err != nil {
			return err
		}
	}
	return nil
}
