package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fundot/fundot/fundot"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := runCLI(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runCLI(args []string) error {
	if len(args) < 2 {
		return replCommand(nil)
	}
	switch args[1] {
	case "repl":
		return replCommand(args[2:])
	case "eval":
		return evalCommand(args[2:])
	case "run":
		return runCommand(args[2:])
	case "tokens":
		return tokensCommand(args[2:])
	case "fmt":
		return fmtCommand(args[2:])
	case "lsp":
		return lspCommand(args[2:])
	case "help", "-h", "--help":
		printUsage()
		return nil
	default:
		return usageError()
	}
}

func replCommand(args []string) error {
	fs := flag.NewFlagSet("repl", flag.ContinueOnError)
	fs.SetOutput(new(flagErrorSink))
	common := registerCommonFlags(fs)
	plain := fs.Bool("plain", false, "use the line REPL instead of the terminal UI")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := common.resolve()
	if err != nil {
		return err
	}
	if *plain {
		cfg.Plain = true
	}

	if !stdinIsTerminal() {
		s := &lineSession{
			ev:     cfg.evaluator(nil, os.Stderr),
			opts:   cfg.parseOptions(),
			prompt: cfg.Prompt,
		}
		return runLines(s, os.Stdin, os.Stdout)
	}
	if cfg.Plain {
		return runLiner(cfg)
	}
	return runREPL(cfg)
}

func evalCommand(args []string) error {
	fs := flag.NewFlagSet("eval", flag.ContinueOnError)
	fs.SetOutput(new(flagErrorSink))
	common := registerCommonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errors.New("fundot eval: expression required")
	}
	cfg, err := common.resolve()
	if err != nil {
		return err
	}

	form, err := fundot.ParseWithOptions(strings.Join(fs.Args(), " "), cfg.parseOptions())
	if err != nil {
		return err
	}
	result, err := cfg.evaluator(nil, os.Stderr).Eval(form)
	if err != nil {
		return err
	}
	fmt.Println(result.String())
	return nil
}

func runCommand(args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(new(flagErrorSink))
	common := registerCommonFlags(fs)
	quiet := fs.Bool("quiet", false, "do not print results")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errors.New("fundot run: source path required")
	}
	cfg, err := common.resolve()
	if err != nil {
		return err
	}

	path := fs.Arg(0)
	input, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read source: %w", err)
	}
	forms, err := fundot.ParseAll(string(input), cfg.parseOptions())
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	ev := cfg.evaluator(nil, os.Stderr)
	for _, form := range forms {
		result, err := ev.Eval(form)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if !*quiet {
			fmt.Println(result.String())
		}
	}
	return nil
}

func tokensCommand(args []string) error {
	if len(args) == 0 {
		return errors.New("fundot tokens: expression required")
	}
	tokens, err := fundot.Tokenize(strings.Join(args, " "))
	if err != nil {
		return err
	}
	for _, tok := range tokens {
		fmt.Println(tok.String())
	}
	return nil
}

func stdinIsTerminal() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func usageError() error {
	printUsage()
	return errors.New("invalid command")
}

func printUsage() {
	prog := filepath.Base(os.Args[0])
	fmt.Fprintf(os.Stderr, "Usage: %s [command] [flags]\n", prog)
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  repl [-plain]        interactive reader (default)")
	fmt.Fprintln(os.Stderr, "  eval <expr>          evaluate one form and print it")
	fmt.Fprintln(os.Stderr, "  run [-quiet] <file>  evaluate every form in a file")
	fmt.Fprintln(os.Stderr, "  tokens <expr>        print the atoms of an expression")
	fmt.Fprintln(os.Stderr, "  fmt [-w] [-check] <path...>")
	fmt.Fprintln(os.Stderr, "                       rewrite .fd files in canonical form")
	fmt.Fprintln(os.Stderr, "  lsp                  language server over stdio")
	fmt.Fprintln(os.Stderr, "Flags for repl, eval, run and lsp:")
	fmt.Fprintln(os.Stderr, "  -config string")
	fmt.Fprintln(os.Stderr, "    path to config.yml (default $FUNDOT_CONFIG or the user config dir)")
	fmt.Fprintln(os.Stderr, "  -strict")
	fmt.Fprintln(os.Stderr, "    report unbound symbols and non-callable heads as errors")
	fmt.Fprintln(os.Stderr, "  -max-depth int")
	fmt.Fprintln(os.Stderr, "    maximum bracket nesting")
	fmt.Fprintln(os.Stderr, "  -debug")
	fmt.Fprintln(os.Stderr, "    log evaluator calls")
}

type flagErrorSink struct{}

func (flagErrorSink) Write(p []byte) (int, error) {
	return len(p), nil
}
