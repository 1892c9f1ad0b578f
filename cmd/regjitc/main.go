// Command regjitc is a small CLI front-end over pkg/regjit: it compiles
// one or more patterns and reports whether a given input matches.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/regjit/regjit/pkg/regjit"
)

// arrayFlags collects repeated -pattern flags into a slice, the same
// flag.Value idiom the teacher's cmd/regengo CLI uses for repeated
// -pattern flags.
type arrayFlags []string

func (f *arrayFlags) String() string {
	return strings.Join(*f, ", ")
}

func (f *arrayFlags) Set(value string) error {
	*f = append(*f, value)
	return nil
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("regjitc", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var patterns arrayFlags
	fs.Var(&patterns, "pattern", "pattern to compile (repeatable)")
	input := fs.String("input", "", "input string to match against each pattern")
	verbose := fs.Bool("v", false, "enable diagnostic logging")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if len(patterns) == 0 {
		fmt.Fprintln(stderr, "regjitc: at least one -pattern is required")
		return 2
	}
	regjit.SetVerbose(*verbose)

	exit := 0
	for _, p := range patterns {
		h, err := regjit.Acquire(p)
		if err != nil {
			var ce *regjit.CompileError
			if asCompileError(err, &ce) {
				fmt.Fprintf(stderr, "regjitc: %q: %s: %v\n", p, ce.Kind, err)
			} else {
				fmt.Fprintf(stderr, "regjitc: %q: %v\n", p, err)
			}
			exit = 1
			continue
		}
		matched := h.Match(*input)
		h.Release()
		if matched {
			fmt.Fprintf(stdout, "%s: match\n", p)
		} else {
			fmt.Fprintf(stdout, "%s: no match\n", p)
			exit = 1
		}
	}
	return exit
}

func asCompileError(err error, target **regjit.CompileError) bool {
	ce, ok := err.(*regjit.CompileError)
	if ok {
		*target = ce
	}
	return ok
}
