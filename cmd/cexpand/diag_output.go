package main

import (
	"os"

	"github.com/spf13/cobra"

	"cexpand/internal/diag"
	"cexpand/internal/diagfmt"
	"cexpand/internal/source"
)

// printDiagnostics renders a bag to stderr, honoring the --color flag.
func printDiagnostics(cmd *cobra.Command, bag *diag.Bag, fs *source.FileSet) {
	if bag == nil || bag.Len() == 0 {
		return
	}
	colorFlag, _ := cmd.Root().PersistentFlags().GetString("color")
	useColor := colorFlag == "on" || (colorFlag == "auto" && isTerminal(os.Stderr))

	bag.Sort()
	diagfmt.Pretty(os.Stderr, bag, fs, diagfmt.PrettyOpts{
		Color:     useColor,
		ShowNotes: true,
	})
}
