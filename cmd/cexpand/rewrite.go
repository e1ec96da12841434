package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"cexpand/internal/driver"
	"cexpand/internal/project"
)

var rewriteCmd = &cobra.Command{
	Use:   "rewrite [flags] file.c...",
	Short: "Rewrite macro invocations into their expansions",
	Long: `Rewrite produces a macro-expanded rendition of each input file.
Expanded text is spliced in at the invocation site and the consumed source
text is bracketed in comments; every original byte survives. Pass "-" to
read from stdin and write to stdout.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRewrite,
}

func init() {
	rewriteCmd.Flags().StringP("output", "o", "", `output destination ("-" for stdout; default: input with .cpp extension)`)
	rewriteCmd.Flags().StringArrayP("include", "I", nil, "add a directory to the include search path")
	rewriteCmd.Flags().StringArrayP("define", "D", nil, "predefine a macro (NAME or NAME=value)")
	rewriteCmd.Flags().StringArrayP("undef", "U", nil, "undefine a macro")
	rewriteCmd.Flags().Int("jobs", 0, "number of files to rewrite in parallel (0 = GOMAXPROCS)")
	rewriteCmd.Flags().Bool("no-cache", false, "disable the include token cache")
}

func runRewrite(cmd *cobra.Command, args []string) error {
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("failed to get output flag: %w", err)
	}
	if output != "" && len(args) > 1 {
		return fmt.Errorf("-o cannot be combined with multiple inputs")
	}

	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	includeDirs, _ := cmd.Flags().GetStringArray("include")
	defines, _ := cmd.Flags().GetStringArray("define")
	undefines, _ := cmd.Flags().GetStringArray("undef")
	jobs, _ := cmd.Flags().GetInt("jobs")
	noCache, _ := cmd.Flags().GetBool("no-cache")

	opts := driver.ExpandOptions{
		MaxDiagnostics: maxDiagnostics,
		IncludeDirs:    includeDirs,
		Defines:        defines,
		Undefines:      undefines,
	}

	// Manifest values sit under the explicit flags: flag include dirs are
	// searched first, flag defines are installed last and win.
	start := "."
	if args[0] != "-" {
		start = filepath.Dir(args[0])
	}
	manifest, err := project.Discover(start)
	if err != nil {
		return err
	}
	if manifest != nil {
		opts.IncludeDirs = append(opts.IncludeDirs, manifest.IncludeDirs()...)
		opts.Defines = append(manifest.Config.Expand.Defines, opts.Defines...)
		opts.Undefines = append(manifest.Config.Expand.Undefines, opts.Undefines...)
	}

	if !noCache {
		if cache, err := driver.OpenDiskCache("cexpand"); err == nil {
			opts.Cache = cache
		}
	}

	if len(args) == 1 {
		return rewriteOne(cmd, args[0], output, opts)
	}

	results, err := driver.ExpandPaths(cmd.Context(), args, opts, jobs)
	if err != nil {
		return err
	}
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			printDiagnostics(cmd, r.Result.Bag, nil)
			failed++
			continue
		}
		if emitErr := emitResult(cmd, r.Path, r.Result, ""); emitErr != nil {
			return emitErr
		}
		if r.Result.Bag.HasErrors() {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files had errors", failed, len(results))
	}
	return nil
}

func rewriteOne(cmd *cobra.Command, input, output string, opts driver.ExpandOptions) error {
	var res *driver.ExpandResult
	if input == "-" {
		content, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		res = driver.ExpandSource("<stdin>", content, opts)
	} else {
		var err error
		res, err = driver.Expand(input, opts)
		if err != nil {
			return fmt.Errorf("rewrite failed: %w", err)
		}
	}

	if err := emitResult(cmd, input, res, output); err != nil {
		return err
	}
	if res.Bag.HasErrors() {
		return fmt.Errorf("%s: expansion reported errors", displayName(input))
	}
	return nil
}

// emitResult prints diagnostics and writes the rewritten file. Unchanged
// inputs produce no output file, only a note on stderr.
func emitResult(cmd *cobra.Command, input string, res *driver.ExpandResult, explicit string) error {
	printDiagnostics(cmd, res.Bag, res.FileSet)

	quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")
	if !res.Changed {
		if !quiet {
			fmt.Fprintf(os.Stderr, "%s: no changes\n", displayName(input))
		}
		return nil
	}

	dest := driver.OutputPath(input, explicit)
	if dest == "-" {
		_, err := os.Stdout.Write(res.Output)
		return err
	}
	if err := os.WriteFile(dest, res.Output, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", dest, err)
	}
	return nil
}

func displayName(input string) string {
	if input == "-" {
		return "<stdin>"
	}
	return input
}
