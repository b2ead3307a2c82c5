// Command formpatch computes and applies JSON Patches between versions of a
// form data document.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
