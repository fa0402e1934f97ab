package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fundot/fundot/fundot"
	"github.com/peterh/liner"
)

// lineSession evaluates one line at a time and renders the result.
type lineSession struct {
	ev     *fundot.Evaluator
	opts   fundot.ParseOptions
	prompt string
}

// evalLine returns the display form of the first form on line.
func (s *lineSession) evalLine(line string) (string, error) {
	form, err := fundot.ParseWithOptions(line, s.opts)
	if err != nil {
		return "", err
	}
	result, err := s.ev.Eval(form)
	if err != nil {
		return "", err
	}
	return result.String(), nil
}

// runLines drives the loop over a plain reader. Blank lines are skipped and
// failures are reported before reading the next line.
func runLines(s *lineSession, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		fmt.Fprint(out, s.prompt)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			return nil
		}
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		output, err := s.evalLine(line)
		if err != nil {
			fmt.Fprintln(out, "error:", err)
			continue
		}
		fmt.Fprintln(out, output)
	}
}

// runLiner drives the loop with line editing and a persistent history.
func runLiner(cfg cliConfig) error {
	ln := liner.NewLiner()
	ln.SetCtrlCAborts(true)

	histPath := cfg.historyPath()
	if histPath != "" {
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
	}
	closeLiner := func() {
		if histPath != "" {
			if f, err := os.Create(histPath); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			}
		}
		_ = ln.Close()
	}

	exit := func(code int) {
		closeLiner()
		os.Exit(code)
	}
	s := &lineSession{
		ev:     cfg.evaluator(exit, os.Stderr),
		opts:   cfg.parseOptions(),
		prompt: cfg.Prompt,
	}

	defer closeLiner()
	for {
		line, err := ln.Prompt(s.prompt)
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Println()
				return nil
			}
			if errors.Is(err, liner.ErrPromptAborted) {
				continue
			}
			return fmt.Errorf("read input: %w", err)
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		ln.AppendHistory(line)
		output, err := s.evalLine(line)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			continue
		}
		fmt.Println(output)
	}
}
