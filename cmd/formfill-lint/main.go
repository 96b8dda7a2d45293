package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formfill"
	"github.com/goliatone/go-formfill/pkg/schema"
)

type violation struct {
	File    string `json:"file" yaml:"file"`
	Path    string `json:"path,omitempty" yaml:"path,omitempty"`
	Field   string `json:"field,omitempty" yaml:"field,omitempty"`
	Message string `json:"message" yaml:"message"`
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("formfill-lint", flag.ContinueOnError)
	flags.SetOutput(stderr)
	format := flags.String("format", "text", "report format: text, json, or yaml")
	flags.Usage = func() {
		fmt.Fprintf(flags.Output(), "Usage: %s [flags] [paths...]\n", filepath.Base(os.Args[0]))
		fmt.Fprintf(flags.Output(), "\nLint form definitions for broken visibility rules and authoring mistakes.\n\n")
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		return 2
	}

	paths := flags.Args()
	if len(paths) == 0 {
		paths = []string{"forms"}
	}

	var violations []violation
	for _, path := range paths {
		files, err := formFiles(path)
		if err != nil {
			fmt.Fprintf(stderr, "lint %s: %v\n", path, err)
			return 1
		}
		for _, file := range files {
			linted, err := lintFile(file)
			if err != nil {
				fmt.Fprintf(stderr, "lint %s: %v\n", file, err)
				return 1
			}
			violations = append(violations, linted...)
		}
	}

	sort.SliceStable(violations, func(i, j int) bool {
		if violations[i].File != violations[j].File {
			return violations[i].File < violations[j].File
		}
		return violations[i].Path < violations[j].Path
	})

	if err := report(stdout, *format, violations); err != nil {
		fmt.Fprintf(stderr, "report: %v\n", err)
		return 2
	}
	if len(violations) > 0 {
		return 1
	}
	return 0
}

func lintFile(path string) ([]violation, error) {
	form, err := formfill.LoadForm(path)
	if err != nil {
		return nil, err
	}
	var result []violation
	for _, issue := range schema.Lint(form) {
		result = append(result, violation{File: path, Path: issue.Path, Field: issue.Field, Message: issue.Message})
	}
	return result, nil
}

// formFiles expands a directory into the JSON and YAML files below it.
func formFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(p)) {
		case ".json", ".yaml", ".yml":
			files = append(files, p)
		}
		return nil
	})
	return files, err
}

func report(w io.Writer, format string, violations []violation) error {
	switch format {
	case "json":
		if violations == nil {
			violations = []violation{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(violations)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(violations); err != nil {
			return err
		}
		return enc.Close()
	case "text":
		for _, v := range violations {
			location := v.Path
			if location == "" {
				location = "form"
			}
			if _, err := fmt.Fprintf(w, "%s: %s -> %s\n", v.File, location, v.Message); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
