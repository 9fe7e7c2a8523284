// Command tsubac is the toolchain's CLI entry point (spec §1, §6;
// SPEC_FULL.md §A.3): a thin cobra shell over internal/orchestrator and
// internal/bindgen. Every configuration surface that doesn't already exist
// inside internal/ (flags, file output, colorized diagnostics) lives here —
// the packages under internal/ take only the plain Go structs spec §6
// defines and never touch a flag, an environment variable, or stdout.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tsubalang/tsubac/internal/errors"
)

// Version is set via ldflags at build time; "dev" otherwise.
var Version = "dev"

var (
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

var rootCmd = &cobra.Command{
	Use:   "tsubac",
	Short: "Lower tsubac source into the native target language",
	Long:  "tsubac compiles a disciplined host+kernel source dialect into a Rust-like target language for a downstream native build.",
	Run: func(cmd *cobra.Command, args []string) {
		if v, _ := cmd.Flags().GetBool("version"); v {
			fmt.Printf("tsubac %s\n", bold(Version))
			return
		}
		_ = cmd.Help()
	},
}

func main() {
	rootCmd.PersistentFlags().Bool("version", false, "print version information")
	rootCmd.AddCommand(buildCmd, extractBindingsCmd)
	if err := rootCmd.Execute(); err != nil {
		printError(err)
		os.Exit(1)
	}
}

// printError renders a *errors.CompileError the way spec §7 specifies
// (`<file>:<line>:<col>: <code>: <message>`, via its own Error() method),
// colorized the way the teacher's CLI colorizes its own diagnostics. Any
// other error (configuration mistakes, file I/O) prints as a plain message —
// it never went through the CompileError catalog in the first place. Both
// subcommands set SilenceErrors so cobra's own uncolored, usage-prefixed
// rendering never fires alongside this one.
func printError(err error) {
	if ce, ok := errors.As(err); ok {
		fmt.Fprintf(os.Stderr, "%s %s\n", red("error:"), ce.Error())
		return
	}
	fmt.Fprintf(os.Stderr, "%s %v\n", red("error:"), err)
}
