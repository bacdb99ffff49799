package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"loxlang/internal/config"
)

func writeFile(t *testing.T, path, text string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestParseArgs_Modes(t *testing.T) {
	cases := []struct {
		args []string
		mode mode
		path string
	}{
		{nil, modeRepl, ""},
		{[]string{"run", "main.lox"}, modeRun, "main.lox"},
		{[]string{"test"}, modeTest, "."},
		{[]string{"test", "tests"}, modeTest, "tests"},
		{[]string{"-v", "test", "--run", "foo", "tests"}, modeTest, "tests"},
	}
	for _, tc := range cases {
		cli, err := parseArgs(tc.args)
		if err != nil {
			t.Fatalf("%v: %v", tc.args, err)
		}
		if cli.mode != tc.mode || cli.path != tc.path {
			t.Fatalf("%v: got mode=%v path=%q, want mode=%v path=%q", tc.args, cli.mode, cli.path, tc.mode, tc.path)
		}
	}
}

func TestParseArgs_Flags(t *testing.T) {
	cli, err := parseArgs([]string{
		"--print-tokens", "--print-tree", "--print-locals",
		"--allow-under-application", "--allow-over-application", "--disable-print",
		"--config=custom.yaml", "--verbose", "test", "--run=^classes/",
	})
	if err != nil {
		t.Fatal(err)
	}
	want := config.Options{
		PrintTokens: true, PrintTree: true, PrintLocals: true,
		AllowUnderApplication: true, AllowOverApplication: true, DisablePrint: true,
	}
	if diff := cmp.Diff(want, cli.opts); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
	if cli.configPath != "custom.yaml" || !cli.verbose || cli.runPattern != "^classes/" {
		t.Fatalf("unexpected cli options: %+v", cli)
	}
}

func TestParseArgs_Errors(t *testing.T) {
	cases := map[string][]string{
		"unknown flag: --bogus":         {"--bogus"},
		"unknown command: fmt":          {"fmt"},
		"run: missing file":             {"run"},
		"unexpected extra arg: b.lox":   {"run", "a.lox", "b.lox"},
		"missing value for --config":    {"--config"},
		"--run is only valid with test": {"--run=x", "run", "a.lox"},
	}
	for want, args := range cases {
		_, err := parseArgs(args)
		if err == nil || err.Error() != want {
			t.Fatalf("%v: got %v, want %q", args, err, want)
		}
	}
}

func TestLoadOptions_LayersFileUnderFlags(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, config.FileName), "print_tree: true\n")

	opts, err := loadOptions(cliOptions{opts: config.Options{DisablePrint: true}}, dir)
	if err != nil {
		t.Fatal(err)
	}
	if !opts.PrintTree || !opts.DisablePrint {
		t.Fatalf("expected file and flag options combined, got %+v", opts)
	}

	if _, err := loadOptions(cliOptions{configPath: filepath.Join(dir, "missing.yaml")}, dir); err == nil {
		t.Fatalf("expected explicit missing config to fail")
	}

	empty := t.TempDir()
	opts, err = loadOptions(cliOptions{}, empty)
	if err != nil {
		t.Fatal(err)
	}
	if opts != (config.Options{}) {
		t.Fatalf("expected defaults without a config file, got %+v", opts)
	}
}

func TestRealMain_Run(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.lox")
	writeFile(t, good, "var a = 1;\n{\n  var a = a + 1;\n  print a;\n}\nprint a;\n")
	bad := filepath.Join(dir, "bad.lox")
	writeFile(t, bad, "print 1;\nprint -\"x\";\n")

	var out, errOut bytes.Buffer
	if code := realMain([]string{"run", good}, &out, &errOut); code != exitOK {
		t.Fatalf("exit = %d, stderr=%s", code, errOut.String())
	}
	if out.String() != "2\n1\n" {
		t.Fatalf("unexpected output %q", out.String())
	}

	out.Reset()
	if code := realMain([]string{"run", bad}, &out, &errOut); code != exitFailure {
		t.Fatalf("exit = %d, want %d", code, exitFailure)
	}
	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	if len(lines) != 2 || lines[0] != "1" || !strings.HasSuffix(lines[1], "error: unsupported operand: -string") {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestRealMain_Test(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.test.lox"), "assert 1 + 1 == 2;\n")
	writeFile(t, filepath.Join(dir, "sub", "b.test.lox"), "assert false;\n")

	var out, errOut bytes.Buffer
	if code := realMain([]string{"test", dir}, &out, &errOut); code != exitFailure {
		t.Fatalf("exit = %d, want %d", code, exitFailure)
	}
	if !strings.HasSuffix(out.String(), "[test] 1 passed, 1 failed\n") {
		t.Fatalf("unexpected output %q", out.String())
	}

	out.Reset()
	if code := realMain([]string{"test", "--run=^a", dir}, &out, &errOut); code != exitOK {
		t.Fatalf("exit = %d, output=%q", code, out.String())
	}
}

func TestRealMain_UsageErrors(t *testing.T) {
	var out, errOut bytes.Buffer
	if code := realMain([]string{"--nope"}, &out, &errOut); code != exitUsage {
		t.Fatalf("exit = %d, want %d", code, exitUsage)
	}
	if !strings.Contains(errOut.String(), "usage:") {
		t.Fatalf("expected usage on stderr, got %q", errOut.String())
	}
	errOut.Reset()
	if code := realMain([]string{"test", "--run=([", "."}, &out, &errOut); code != exitUsage {
		t.Fatalf("exit = %d, want %d", code, exitUsage)
	}
}
