// Command peakalign aligns two sparse signals stored in a YAML or JSON file
// and prints the best offset, or the full squared-error curve.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
