package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/fundot/fundot/fundot"
)

const sourceExt = ".fd"

// sourceDoc is one file read for formatting.
type sourceDoc struct {
	path      string
	perm      fs.FileMode
	original  string
	formatted string
}

func loadSourceDoc(path string) (*sourceDoc, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	formatted, err := formatSource(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &sourceDoc{
		path:      path,
		perm:      info.Mode().Perm(),
		original:  string(data),
		formatted: formatted,
	}, nil
}

func (d *sourceDoc) canonical() bool { return d.original == d.formatted }

func (d *sourceDoc) save() error {
	return os.WriteFile(d.path, []byte(d.formatted), d.perm)
}

func fmtCommand(args []string) error {
	flags := flag.NewFlagSet("fmt", flag.ContinueOnError)
	flags.SetOutput(new(flagErrorSink))
	write := flags.Bool("w", false, "rewrite files in place")
	check := flags.Bool("check", false, "fail if any file is not in canonical form")
	list := flags.Bool("l", false, "list files that are not in canonical form")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() == 0 {
		return errors.New("fundot fmt: path required")
	}

	paths, err := sourceFiles(flags.Args())
	if err != nil {
		return err
	}

	stale := 0
	for _, path := range paths {
		doc, err := loadSourceDoc(path)
		if err != nil {
			return err
		}
		if !doc.canonical() {
			stale++
		}
		switch {
		case *write:
			if !doc.canonical() {
				if err := doc.save(); err != nil {
					return err
				}
			}
		case *list:
			if !doc.canonical() {
				fmt.Println(doc.path)
			}
		case !*check:
			fmt.Print(doc.formatted)
		}
	}

	if *check && stale > 0 {
		return fmt.Errorf("fundot fmt: %d file(s) need formatting", stale)
	}
	return nil
}

// sourceFiles expands targets into a sorted, de-duplicated file list. A
// file named directly is always taken; directories contribute their .fd
// files and hidden directories are skipped.
func sourceFiles(targets []string) ([]string, error) {
	var paths []string
	for _, target := range targets {
		info, err := os.Stat(target)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			paths = append(paths, filepath.Clean(target))
			continue
		}
		err = filepath.WalkDir(target, func(path string, entry fs.DirEntry, err error) error {
			switch {
			case err != nil:
				return err
			case entry.IsDir() && path != target && strings.HasPrefix(entry.Name(), "."):
				return filepath.SkipDir
			case !entry.IsDir() && filepath.Ext(path) == sourceExt:
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	slices.Sort(paths)
	return slices.Compact(paths), nil
}

// formatSource puts every top-level form on its own line in canonical
// form. Reading the result gives back the same forms.
func formatSource(source string) (string, error) {
	forms, err := fundot.ParseAll(source, fundot.ParseOptions{})
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for i, form := range forms {
		text, err := fundot.Canonical(form)
		if err != nil {
			return "", fmt.Errorf("form %d: %w", i+1, err)
		}
		b.WriteString(text)
		b.WriteByte('\n')
	}
	return b.String(), nil
}
