package commands

import (
	"fmt"
	"os"

	"github.com/lane-core/pack/internal/types"
)

// reportSummary prints every accumulated error and warning in summary to
// stderr, following the batch propagation policy: nothing here halts the
// pipeline, it only surfaces what already happened.
func reportSummary(summary *types.Summary) {
	if summary == nil {
		return
	}
	for _, e := range summary.Declarations {
		fmt.Fprintf(os.Stderr, "declaration error: %s\n", e.Error())
	}
	if summary.Resolution != nil {
		fmt.Fprintf(os.Stderr, "resolution error: %s\n", summary.Resolution.Error())
	}
	for _, w := range summary.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w.Error())
	}
	for _, e := range summary.VCSErrors {
		fmt.Fprintf(os.Stderr, "vcs error: %s\n", e.Error())
	}
	for _, e := range summary.EntryMissing {
		fmt.Fprintf(os.Stderr, "warning: %s\n", e.Error())
	}
	for _, e := range summary.RCFailures {
		fmt.Fprintf(os.Stderr, "warning: %s\n", e.Error())
	}
	for _, e := range summary.BuildFailures {
		fmt.Fprintf(os.Stderr, "warning: %s\n", e.Error())
	}
}

// exitOnSummary exits the process with the summary's mapped exit code
// (0/1/2) if it is non-zero, per the CLI's error-handling contract.
func exitOnSummary(summary *types.Summary) {
	if summary == nil {
		return
	}
	if code := summary.ExitCode(); code != 0 {
		os.Exit(code)
	}
}
