// Package config holds the interpreter options and loads them from lox.yaml.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

// FileName is the config file picked up from the working directory.
const FileName = "lox.yaml"

type Options struct {
	// Dump stages before running.
	PrintTokens bool `yaml:"print_tokens"`
	PrintTree   bool `yaml:"print_tree"`
	PrintLocals bool `yaml:"print_locals"`

	// Call arity leniency. Natives ignore both.
	AllowUnderApplication bool `yaml:"allow_under_application"`
	AllowOverApplication  bool `yaml:"allow_over_application"`

	DisablePrint bool `yaml:"disable_print"`
}

func Default() Options { return Options{} }

// Load decodes a YAML options file. Unknown keys are an error; an empty file
// yields the defaults.
func Load(path string) (Options, error) {
	file, err := os.Open(path)
	if err != nil {
		return Options{}, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer file.Close()

	opts := Default()
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&opts); err != nil {
		if errors.Is(err, io.EOF) {
			return Default(), nil
		}
		return Options{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return opts, nil
}

// Find returns the path of FileName inside dir when it exists.
func Find(dir string) (string, bool) {
	p := filepath.Join(dir, FileName)
	st, err := os.Stat(p)
	if err != nil || st.IsDir() {
		return "", false
	}
	return p, true
}

// Merge layers src under dst: fields still false in dst take src's value, so
// an option enabled on either side stays enabled.
func Merge(dst *Options, src Options) error {
	if err := mergo.Merge(dst, src); err != nil {
		return fmt.Errorf("config: merge: %w", err)
	}
	return nil
}
