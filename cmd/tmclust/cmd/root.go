package cmd

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

// version follows the teacher's convention of a bare package-level
// constant rather than a build-time ldflags injection, since this repo
// has no release pipeline of its own yet.
const version = "0.1.0"

// RootCmd is the base command when tmclust is called without a subcommand.
var RootCmd = &cobra.Command{
	Use:   "tmclust",
	Short: "Greedy TM-score structural clustering of biomolecule chains",
	Long: fmt.Sprintf(`
    Program: tmclust (TM-score structural clustering)
     Version: v%s

tmclust greedily clusters protein/nucleic-acid chains by TM-score
structural similarity: chains are processed longest-first, each either
joining an existing cluster (on HIT against a representative) or
founding a new one.

`, version),
}

// Execute adds all child commands to RootCmd and runs it. Called once
// from main.main.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
}

func init() {
	defaultThreads := runtime.NumCPU()

	RootCmd.PersistentFlags().IntP("threads", "j", defaultThreads, "number of CPUs to use")
	RootCmd.PersistentFlags().BoolP("quiet", "q", false, "do not print any verbose information")
	RootCmd.PersistentFlags().StringP("infile-list", "i", "", "file of input files list (one file per line), appended to files given on the command line")
}
