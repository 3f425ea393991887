// Command blangc is the compiler's CLI entry point (spec.md §6.1): a
// linear scan over os.Args in the style of funxy's cmd/funxy/main.go,
// dispatching to batch compilation, ahead-of-time compile-to-file, or the
// REPL when no input file is given.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bruce-hill/blangc/internal/backend"
	"github.com/bruce-hill/blangc/internal/backend/native"
	"github.com/bruce-hill/blangc/internal/backend/vmbackend"
	"github.com/bruce-hill/blangc/internal/config"
	"github.com/bruce-hill/blangc/internal/driver"
)

const usage = `usage: blangc [-h|--help] [-v|--verbose] [-c|--compile] [-o outfile] [-A|--asm] [-O<level>] [-I<dir>] [-V<name=literal>] [file] [args...]

With no file, starts an interactive REPL.
`

type cliFlags struct {
	help      bool
	verbose   bool
	compile   bool
	asmOnly   bool
	outfile   string
	optLevel  int
	includes  []string
	defines   map[string]string
	file      string
	progArgs  []string
}

func parseArgs(args []string) (*cliFlags, error) {
	f := &cliFlags{optLevel: 0, defines: map[string]string{}}
	i := 0
	for ; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "-h" || arg == "--help":
			f.help = true
		case arg == "-v" || arg == "--verbose":
			f.verbose = true
		case arg == "-c" || arg == "--compile":
			f.compile = true
		case arg == "-A" || arg == "--asm":
			f.asmOnly = true
		case arg == "-o":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("-o requires an output path")
			}
			i++
			f.outfile = args[i]
		case strings.HasPrefix(arg, "-O"):
			lvl, err := strconv.Atoi(strings.TrimPrefix(arg, "-O"))
			if err != nil {
				return nil, fmt.Errorf("invalid -O level %q", arg)
			}
			f.optLevel = lvl
		case strings.HasPrefix(arg, "-I"):
			f.includes = append(f.includes, strings.TrimPrefix(arg, "-I"))
		case strings.HasPrefix(arg, "-V"):
			kv := strings.TrimPrefix(arg, "-V")
			parts := strings.SplitN(kv, "=", 2)
			if len(parts) != 2 {
				return nil, fmt.Errorf("invalid -V%s: expected name=literal", kv)
			}
			f.defines[parts[0]] = parts[1]
		case strings.HasPrefix(arg, "-") && arg != "-":
			return nil, fmt.Errorf("unknown flag %q", arg)
		default:
			f.file = arg
			f.progArgs = args[i+1:]
			return f, nil
		}
	}
	return f, nil
}

func main() {
	flags, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
	if flags.help {
		fmt.Print(usage)
		return
	}

	searchPath := config.ModulePath(flags.includes)
	if flags.verbose {
		fmt.Fprintf(os.Stderr, "; module search path: %s\n", strings.Join(searchPath, ":"))
	}

	if flags.file == "" {
		runREPL(flags)
		return
	}

	opts := driver.Options{Verbose: flags.verbose, ModuleID: flags.file, Defines: flags.defines}

	if flags.compile {
		bk := native.New()
		outPath := flags.outfile
		if outPath == "" {
			outPath = strings.TrimSuffix(flags.file, filepath.Ext(flags.file))
		}
		compileOpts := backend.CompileOptions{OptLevel: flags.optLevel, AsmOnly: flags.asmOnly, Verbose: flags.verbose}
		if !driver.CompileFileTo(flags.file, outPath, bk, compileOpts, opts) {
			os.Exit(1)
		}
		return
	}

	os.Args = append([]string{os.Args[0]}, flags.progArgs...)
	var bk backend.Backend = vmbackend.New()
	code := driver.RunFile(flags.file, bk, opts)
	os.Exit(code)
}

func runREPL(flags *cliFlags) {
	bk := vmbackend.New()
	r := driver.NewREPL(bk)
	r.Run(os.Stdin, os.Stdout)
}
