package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fundot/fundot/fundot"
)

var (
	blue  = lipgloss.Color("#3B82F6")
	green = lipgloss.Color("#10B981")
	red   = lipgloss.Color("#EF4444")
	grey  = lipgloss.Color("#6B7280")
	amber = lipgloss.Color("#F59E0B")

	titleStyle  = lipgloss.NewStyle().Foreground(blue).Bold(true).Padding(0, 1)
	inputStyle  = lipgloss.NewStyle().Foreground(blue).Bold(true)
	valueStyle  = lipgloss.NewStyle().Foreground(green)
	failStyle   = lipgloss.NewStyle().Foreground(red)
	dimStyle    = lipgloss.NewStyle().Foreground(grey)
	nameStyle   = lipgloss.NewStyle().Foreground(amber)
	panelStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(blue).Padding(0, 1)
	headerStyle = lipgloss.NewStyle().Foreground(blue).Bold(true)
)

// literals offered by tab completion next to the bound globals.
var completionLiterals = []string{"null", "true", "false"}

type entryKind int

const (
	entryValue entryKind = iota
	entryError
	entryNote
)

// transcriptEntry is one line of REPL output, with the input that caused
// it when there was one.
type transcriptEntry struct {
	input string
	text  string
	kind  entryKind
	// of is the kind of an evaluated value, shown next to it.
	of fundot.ValueKind
}

// inputHistory recalls submitted lines. cursor equals len(lines) when the
// user is not browsing.
type inputHistory struct {
	lines  []string
	cursor int
}

func (h *inputHistory) add(line string) {
	h.lines = append(h.lines, line)
	h.cursor = len(h.lines)
}

func (h *inputHistory) prev() (string, bool) {
	if h.cursor == 0 {
		return "", false
	}
	h.cursor--
	return h.lines[h.cursor], true
}

// next moves forward; stepping past the newest line yields an empty input.
func (h *inputHistory) next() (string, bool) {
	if h.cursor >= len(h.lines) {
		return "", false
	}
	h.cursor++
	if h.cursor == len(h.lines) {
		return "", true
	}
	return h.lines[h.cursor], true
}

// exitRequest records a quit from inside the evaluator so the program can
// leave the alt screen before the process ends.
type exitRequest struct {
	requested bool
	code      int
}

type replKeys struct {
	Prev     key.Binding
	Next     key.Binding
	Submit   key.Binding
	Complete key.Binding
	Globals  key.Binding
	Help     key.Binding
	Clear    key.Binding
	Quit     key.Binding
}

func (k replKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Globals, k.Clear, k.Quit}
}

func (k replKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Submit, k.Complete, k.Prev, k.Next},
		{k.Help, k.Globals, k.Clear, k.Quit},
	}
}

var keys = replKeys{
	Prev:     key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "previous line")),
	Next:     key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "next line")),
	Submit:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "evaluate first form")),
	Complete: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "complete globals and literals")),
	Globals:  key.NewBinding(key.WithKeys("ctrl+g"), key.WithHelp("ctrl+g", "globals")),
	Help:     key.NewBinding(key.WithKeys("ctrl+k"), key.WithHelp("ctrl+k", "help")),
	Clear:    key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "clear")),
	Quit:     key.NewBinding(key.WithKeys("ctrl+c", "ctrl+d"), key.WithHelp("ctrl+c", "quit")),
}

const commandSummary = ":help  :globals  :mode [strict|permissive]  :clear  :quit"

type replModel struct {
	input  textinput.Model
	help   help.Model
	cfg    cliConfig
	ev     *fundot.Evaluator
	exit   *exitRequest
	logOut io.Writer

	transcript  []transcriptEntry
	lines       inputHistory
	showGlobals bool
	quitting    bool

	width  int
	height int
	sized  bool
}

func newREPLModel(cfg cliConfig, logOut io.Writer) replModel {
	in := textinput.New()
	in.Placeholder = "type a form..."
	in.Prompt = cfg.Prompt
	in.PromptStyle = inputStyle
	in.CharLimit = 4096
	in.Width = 60
	in.Focus()

	m := replModel{
		input:  in,
		help:   help.New(),
		cfg:    cfg,
		exit:   &exitRequest{},
		logOut: logOut,
	}
	m.ev = m.buildEvaluator()
	return m
}

// buildEvaluator binds quit to the model's exit request, so a rebuilt
// evaluator still ends the program.
func (m replModel) buildEvaluator() *fundot.Evaluator {
	req := m.exit
	return m.cfg.evaluator(func(code int) {
		req.requested = true
		req.code = code
	}, m.logOut)
}

func (m replModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m replModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height, m.sized = msg.Width, msg.Height, true
		m.input.Width = max(msg.Width-10, 10)
		m.help.Width = msg.Width
		return m, nil
	case tea.KeyMsg:
		if next, cmd, handled := m.handleKey(msg); handled {
			return next, cmd
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m replModel) handleKey(msg tea.KeyMsg) (replModel, tea.Cmd, bool) {
	switch {
	case key.Matches(msg, keys.Quit):
		m.quitting = true
		return m, tea.Quit, true
	case key.Matches(msg, keys.Clear):
		m.transcript = nil
	case key.Matches(msg, keys.Globals):
		m.showGlobals = !m.showGlobals
	case key.Matches(msg, keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, keys.Prev):
		if line, ok := m.lines.prev(); ok {
			m.setInput(line)
		}
	case key.Matches(msg, keys.Next):
		if line, ok := m.lines.next(); ok {
			m.setInput(line)
		}
	case key.Matches(msg, keys.Complete):
		m = m.complete()
	case key.Matches(msg, keys.Submit):
		next, cmd := m.submit(strings.TrimSpace(m.input.Value()))
		return next, cmd, true
	default:
		return m, nil, false
	}
	return m, nil, true
}

func (m *replModel) setInput(s string) {
	m.input.SetValue(s)
	m.input.CursorEnd()
}

func (m replModel) submit(line string) (replModel, tea.Cmd) {
	if line == "" {
		return m, nil
	}
	m.input.SetValue("")
	if strings.HasPrefix(line, ":") {
		m.lines.cursor = len(m.lines.lines)
		return m.runCommand(line)
	}

	m.lines.add(line)
	entry := m.evaluate(line)
	if m.exit.requested {
		m.quitting = true
		return m, tea.Quit
	}
	m.transcript = append(m.transcript, entry)
	return m, nil
}

// evaluate reads the first form of line. Parse failures keep only the
// message line; the code frame would repeat the input just above it.
func (m replModel) evaluate(line string) transcriptEntry {
	form, err := fundot.ParseWithOptions(line, m.cfg.parseOptions())
	if err != nil {
		var perr *fundot.ParseError
		if errors.As(err, &perr) {
			return transcriptEntry{input: line, kind: entryError, text: fmt.Sprintf("%s at column %d: %s", perr.Kind, perr.Pos.Column, perr.Msg)}
		}
		return transcriptEntry{input: line, kind: entryError, text: err.Error()}
	}
	result, err := m.ev.Eval(form)
	if err != nil {
		return transcriptEntry{input: line, kind: entryError, text: err.Error()}
	}
	return transcriptEntry{input: line, kind: entryValue, text: result.String(), of: result.Kind()}
}

type replDirective func(m replModel, line string, args []string) (replModel, tea.Cmd)

var replDirectives = map[string]replDirective{
	":help":    toggleHelp,
	":h":       toggleHelp,
	":globals": toggleGlobals,
	":g":       toggleGlobals,
	":clear":   clearTranscript,
	":c":       clearTranscript,
	":mode":    switchMode,
	":m":       switchMode,
	":quit":    quitREPL,
	":q":       quitREPL,
}

func (m replModel) runCommand(line string) (replModel, tea.Cmd) {
	fields := strings.Fields(line)
	command, ok := replDirectives[fields[0]]
	if !ok {
		m.note(line, entryError, "unknown command "+fields[0]+"; try "+commandSummary)
		return m, nil
	}
	return command(m, line, fields[1:])
}

func toggleHelp(m replModel, _ string, _ []string) (replModel, tea.Cmd) {
	m.help.ShowAll = !m.help.ShowAll
	return m, nil
}

func toggleGlobals(m replModel, _ string, _ []string) (replModel, tea.Cmd) {
	m.showGlobals = !m.showGlobals
	return m, nil
}

func clearTranscript(m replModel, _ string, _ []string) (replModel, tea.Cmd) {
	m.transcript = nil
	return m, nil
}

func quitREPL(m replModel, _ string, _ []string) (replModel, tea.Cmd) {
	m.quitting = true
	return m, tea.Quit
}

// switchMode reports the evaluator mode, or rebuilds the evaluator in the
// requested one.
func switchMode(m replModel, line string, args []string) (replModel, tea.Cmd) {
	if len(args) == 0 {
		m.note(line, entryNote, "mode "+m.ev.Mode().String())
		return m, nil
	}
	mode, ok := fundot.ParseMode(args[0])
	if !ok {
		m.note(line, entryError, fmt.Sprintf("unknown mode %q (want strict or permissive)", args[0]))
		return m, nil
	}
	m.cfg.Mode = mode.String()
	m.ev = m.buildEvaluator()
	m.note(line, entryNote, "mode "+mode.String())
	return m, nil
}

func (m *replModel) note(line string, kind entryKind, text string) {
	m.transcript = append(m.transcript, transcriptEntry{input: line, kind: kind, text: text})
}

// complete extends the trailing atom of the input. The atom boundary is
// the tokenizer's: any punctuation other than '_' or whitespace.
func (m replModel) complete() replModel {
	input := m.input.Value()
	start := 0
	if i := strings.LastIndexFunc(input, func(r rune) bool { return !isAtomRune(r) }); i >= 0 {
		_, size := utf8.DecodeRuneInString(input[i:])
		start = i + size
	}
	prefix := input[start:]
	if prefix == "" {
		return m
	}

	var matches []string
	for _, candidate := range append(m.ev.Names(), completionLiterals...) {
		if strings.HasPrefix(candidate, prefix) {
			matches = append(matches, candidate)
		}
	}
	switch len(matches) {
	case 0:
	case 1:
		m.setInput(input[:start] + matches[0])
	default:
		m.note("", entryNote, strings.Join(matches, "  "))
	}
	return m
}

func isAtomRune(r rune) bool {
	switch {
	case unicode.IsSpace(r):
		return false
	case r == '_' || r > unicode.MaxASCII:
		return true
	}
	return !unicode.IsPunct(r) && !unicode.IsSymbol(r)
}

func (m replModel) View() string {
	if !m.sized {
		return "Loading..."
	}
	if m.quitting {
		return dimStyle.Render("bye\n")
	}

	sections := []string{m.statusLine()}
	sections = append(sections, m.transcriptView()...)
	if m.showGlobals {
		sections = append(sections, globalsPanel(m.ev))
	}
	if m.help.ShowAll {
		sections = append(sections, panelStyle.Render(m.help.View(keys)+"\n"+dimStyle.Render(commandSummary)))
	}
	sections = append(sections, m.input.View(), m.help.View(keys))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m replModel) statusLine() string {
	mode := dimStyle.Render(fmt.Sprintf("%s · %d globals", m.ev.Mode(), len(m.ev.Names())))
	return titleStyle.Render("fundot REPL") + " " + mode + "\n"
}

// transcriptView renders the newest entries that fit above the input.
func (m replModel) transcriptView() []string {
	room := m.height - 6
	if m.help.ShowAll {
		room -= 8
	}
	if m.showGlobals {
		room -= len(m.ev.Names()) + 3
	}

	var rows []string
	for i := len(m.transcript) - 1; i >= 0 && len(rows) < max(room, 1); i-- {
		e := m.transcript[i]
		var out string
		switch e.kind {
		case entryValue:
			out = valueStyle.Render("→ "+e.text) + " " + dimStyle.Render(e.of.String())
		case entryError:
			out = failStyle.Render("✗ " + e.text)
		default:
			out = dimStyle.Render(e.text)
		}
		if e.input != "" {
			out = dimStyle.Render("› ") + e.input + "\n  " + out
		}
		rows = append([]string{out}, rows...)
	}
	return rows
}

func globalsPanel(ev *fundot.Evaluator) string {
	lines := []string{headerStyle.Render("Globals")}
	for _, name := range ev.Names() {
		bound, _ := ev.Lookup(name)
		lines = append(lines, nameStyle.Render(name)+" = "+bound.String())
	}
	return panelStyle.Render(strings.Join(lines, "\n"))
}

// runREPL runs the terminal UI. A quit evaluated inside it ends the
// process once the terminal is restored.
func runREPL(cfg cliConfig) error {
	var logOut io.Writer
	if cfg.Debug {
		f, err := tea.LogToFile("fundot-debug.log", "fundot")
		if err != nil {
			return fmt.Errorf("open debug log: %w", err)
		}
		defer f.Close()
		logOut = f
	}

	model := newREPLModel(cfg, logOut)
	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		return err
	}
	if model.exit.requested {
		os.Exit(model.exit.code)
	}
	return nil
}
