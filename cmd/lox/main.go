package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"regexp"
	"strings"
	"syscall"

	"github.com/peterh/liner"

	"loxlang/internal/config"
	"loxlang/internal/host"
	"loxlang/internal/interp"
	"loxlang/internal/testrun"
)

const (
	historyFile = ".lox_history"
	prompt      = "> "
	exitCommand = ".exit"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

func usage(w io.Writer) {
	fmt.Fprintln(w, "lox - tree-walking interpreter")
	fmt.Fprintln(w, "usage:")
	fmt.Fprintln(w, "  lox [flags]                start the REPL")
	fmt.Fprintln(w, "  lox [flags] run <file>     run a source file")
	fmt.Fprintln(w, "  lox [flags] test [dir]     run every *.test.lox below dir")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "flags:")
	fmt.Fprintln(w, "  -v, --verbose                 debug logging on stderr")
	fmt.Fprintln(w, "  --config=<path>               options file (default: ./lox.yaml if present)")
	fmt.Fprintln(w, "  --print-tokens                dump tokens of every compiled module")
	fmt.Fprintln(w, "  --print-tree                  dump the syntax tree of every compiled module")
	fmt.Fprintln(w, "  --print-locals                dump resolved local depths")
	fmt.Fprintln(w, "  --allow-under-application     missing arguments become nil")
	fmt.Fprintln(w, "  --allow-over-application      extra arguments are ignored")
	fmt.Fprintln(w, "  --disable-print               print statements produce no output")
	fmt.Fprintln(w, "test flags:")
	fmt.Fprintln(w, "  --run=<regex>                 run tests whose relative path matches regex")
}

type mode int

const (
	modeRepl mode = iota
	modeRun
	modeTest
)

type cliOptions struct {
	mode       mode
	path       string
	configPath string
	verbose    bool
	runPattern string
	opts       config.Options
}

func parseArgs(args []string) (cli cliOptions, err error) {
	var positional []string
	for i := 0; i < len(args); i++ {
		a := args[i]
		switch a {
		case "-v", "--verbose":
			cli.verbose = true
			continue
		case "--print-tokens":
			cli.opts.PrintTokens = true
			continue
		case "--print-tree":
			cli.opts.PrintTree = true
			continue
		case "--print-locals":
			cli.opts.PrintLocals = true
			continue
		case "--allow-under-application":
			cli.opts.AllowUnderApplication = true
			continue
		case "--allow-over-application":
			cli.opts.AllowOverApplication = true
			continue
		case "--disable-print":
			cli.opts.DisablePrint = true
			continue
		case "--config", "--run":
			if i+1 >= len(args) {
				return cliOptions{}, fmt.Errorf("missing value for %s", a)
			}
			i++
			a = a + "=" + args[i]
		}
		if strings.HasPrefix(a, "--config=") {
			cli.configPath = strings.TrimPrefix(a, "--config=")
			continue
		}
		if strings.HasPrefix(a, "--run=") {
			cli.runPattern = strings.TrimPrefix(a, "--run=")
			continue
		}
		if strings.HasPrefix(a, "-") {
			return cliOptions{}, fmt.Errorf("unknown flag: %s", a)
		}
		positional = append(positional, a)
	}

	if len(positional) == 0 {
		cli.mode = modeRepl
	} else {
		switch positional[0] {
		case "run":
			cli.mode = modeRun
			if len(positional) < 2 {
				return cliOptions{}, fmt.Errorf("run: missing file")
			}
			cli.path = positional[1]
			positional = positional[2:]
		case "test":
			cli.mode = modeTest
			cli.path = "."
			if len(positional) >= 2 {
				cli.path = positional[1]
				positional = positional[2:]
			} else {
				positional = nil
			}
		default:
			return cliOptions{}, fmt.Errorf("unknown command: %s", positional[0])
		}
		if len(positional) > 0 {
			return cliOptions{}, fmt.Errorf("unexpected extra arg: %s", positional[0])
		}
	}
	if cli.runPattern != "" && cli.mode != modeTest {
		return cliOptions{}, fmt.Errorf("--run is only valid with test")
	}
	return cli, nil
}

// loadOptions layers the options file under the command-line flags. An
// explicit --config must exist; the implicit ./lox.yaml is optional.
func loadOptions(cli cliOptions, cwd string) (config.Options, error) {
	opts := cli.opts
	path := cli.configPath
	if path == "" {
		found, ok := config.Find(cwd)
		if !ok {
			return opts, nil
		}
		path = found
	}
	file, err := config.Load(path)
	if err != nil {
		return config.Options{}, err
	}
	if err := config.Merge(&opts, file); err != nil {
		return config.Options{}, err
	}
	return opts, nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func realMain(args []string, stdout, stderr io.Writer) int {
	cli, err := parseArgs(args)
	if err != nil {
		fmt.Fprintln(stderr, err.Error())
		usage(stderr)
		return exitUsage
	}
	var filter *regexp.Regexp
	if cli.runPattern != "" {
		filter, err = regexp.Compile(cli.runPattern)
		if err != nil {
			fmt.Fprintf(stderr, "invalid --run pattern: %v\n", err)
			return exitUsage
		}
	}
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintln(stderr, err.Error())
		return exitFailure
	}
	opts, err := loadOptions(cli, cwd)
	if err != nil {
		fmt.Fprintln(stderr, err.Error())
		return exitFailure
	}
	log := newLogger(stderr, cli.verbose)

	switch cli.mode {
	case modeRun:
		s := interp.NewSession(host.NewOS(filepath.Dir(cli.path), stdout), opts)
		s.SetLogger(log)
		if err := s.RunFile(cli.path); err != nil {
			return exitFailure
		}
	case modeTest:
		s := interp.NewSession(host.NewOS(cli.path, stdout), opts)
		s.SetLogger(log)
		if _, err := testrun.Run(s, filter); err != nil {
			log.Debug("test run failed", slog.Any("error", err))
			return exitFailure
		}
	default:
		s := interp.NewSession(host.NewOS(".", stdout), opts)
		s.SetLogger(log)
		return repl(s, stderr)
	}
	return exitOK
}

func repl(s *interp.Session, stderr io.Writer) int {
	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	for {
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			return exitOK
		}
		if err != nil {
			fmt.Fprintln(stderr, err.Error())
			return exitFailure
		}
		text := strings.TrimSpace(line)
		if text == exitCommand {
			return exitOK
		}
		if text == "" {
			continue
		}
		ln.AppendHistory(line)
		// Errors are already reported; the session stays usable.
		_ = s.RunLine(line)
	}
}

func main() {
	os.Exit(realMain(os.Args[1:], os.Stdout, os.Stderr))
}
