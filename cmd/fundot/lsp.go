package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/textproto"
	"os"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/fundot/fundot/fundot"
)

// JSON-RPC error codes used by the server.
const (
	codeParseError     = -32700
	codeInvalidParams  = -32602
	codeMethodNotFound = -32601
)

const (
	severityError      = 1
	completionFunction = 3
	completionConstant = 21
	syncFull           = 1
)

type rpcRequest struct {
	ID     json.RawMessage `json:"id,omitempty"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string { return e.Message }

type rpcResponse struct {
	JSONRPC string           `json:"jsonrpc"`
	ID      json.RawMessage  `json:"id"`
	Result  *json.RawMessage `json:"result,omitempty"`
	Error   *rpcError        `json:"error,omitempty"`
}

type rpcNotification struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

type lspPosition struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

type lspRange struct {
	Start lspPosition `json:"start"`
	End   lspPosition `json:"end"`
}

type diagnostic struct {
	Range    lspRange `json:"range"`
	Severity int      `json:"severity"`
	Code     string   `json:"code,omitempty"`
	Source   string   `json:"source"`
	Message  string   `json:"message"`
}

type completionItem struct {
	Label  string `json:"label"`
	Kind   int    `json:"kind"`
	Detail string `json:"detail"`
}

type hoverResult struct {
	Contents struct {
		Kind  string `json:"kind"`
		Value string `json:"value"`
	} `json:"contents"`
	Range lspRange `json:"range"`
}

type textDocumentParams struct {
	TextDocument struct {
		URI  string `json:"uri"`
		Text string `json:"text"`
	} `json:"textDocument"`
	ContentChanges []struct {
		Text string `json:"text"`
	} `json:"contentChanges"`
	Position lspPosition `json:"position"`
}

// lspServer answers one client over a framed stream. Documents are kept in
// full; every open or change republishes the document's diagnostics.
type lspServer struct {
	in      *textproto.Reader
	out     *bufio.Writer
	ev      *fundot.Evaluator
	opts    fundot.ParseOptions
	docs    map[string]string
	pending []rpcNotification
}

type lspHandler func(s *lspServer, params *textDocumentParams) (any, error)

var lspMethods = map[string]lspHandler{
	"initialize":              (*lspServer).initialize,
	"initialized":             (*lspServer).ignore,
	"shutdown":                (*lspServer).ignore,
	"textDocument/didOpen":    (*lspServer).didOpen,
	"textDocument/didChange":  (*lspServer).didChange,
	"textDocument/didClose":   (*lspServer).didClose,
	"textDocument/completion": (*lspServer).completion,
	"textDocument/hover":      (*lspServer).hover,
}

func lspCommand(args []string) error {
	flags := flag.NewFlagSet("lsp", flag.ContinueOnError)
	flags.SetOutput(new(flagErrorSink))
	common := registerCommonFlags(flags)
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() > 0 {
		return errors.New("fundot lsp: unexpected arguments")
	}
	cfg, err := common.resolve()
	if err != nil {
		return err
	}
	return runLSP(os.Stdin, os.Stdout, cfg)
}

func runLSP(in io.Reader, out io.Writer, cfg cliConfig) error {
	s := &lspServer{
		in:   textproto.NewReader(bufio.NewReader(in)),
		out:  bufio.NewWriter(out),
		ev:   cfg.evaluator(func(int) {}, nil),
		opts: cfg.parseOptions(),
		docs: make(map[string]string),
	}
	return s.serve()
}

// serve runs until the client sends exit or closes the stream.
func (s *lspServer) serve() error {
	for {
		body, err := s.readMessage()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		var req rpcRequest
		if err := json.Unmarshal(body, &req); err != nil {
			if err := s.reply(json.RawMessage("null"), nil, &rpcError{Code: codeParseError, Message: err.Error()}); err != nil {
				return err
			}
			continue
		}
		if req.Method == "exit" {
			return nil
		}
		if err := s.dispatch(req); err != nil {
			return err
		}
	}
}

func (s *lspServer) dispatch(req rpcRequest) error {
	isRequest := len(req.ID) > 0
	handler, ok := lspMethods[req.Method]
	if !ok {
		if !isRequest {
			return nil
		}
		return s.reply(req.ID, nil, &rpcError{Code: codeMethodNotFound, Message: "method not found: " + req.Method})
	}

	var params textDocumentParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			if !isRequest {
				return nil
			}
			return s.reply(req.ID, nil, &rpcError{Code: codeInvalidParams, Message: err.Error()})
		}
	}

	result, err := handler(s, &params)
	if isRequest {
		var rerr *rpcError
		if err != nil && !errors.As(err, &rerr) {
			rerr = &rpcError{Code: codeInvalidParams, Message: err.Error()}
		}
		if err := s.reply(req.ID, result, rerr); err != nil {
			return err
		}
	}
	for _, note := range s.pending {
		if err := s.send(note); err != nil {
			return err
		}
	}
	s.pending = s.pending[:0]
	return nil
}

func (s *lspServer) initialize(*textDocumentParams) (any, error) {
	return map[string]any{
		"capabilities": map[string]any{
			"textDocumentSync":   syncFull,
			"hoverProvider":      true,
			"completionProvider": map[string]any{},
		},
		"serverInfo": map[string]any{"name": "fundot"},
	}, nil
}

func (s *lspServer) ignore(*textDocumentParams) (any, error) { return nil, nil }

func (s *lspServer) didOpen(p *textDocumentParams) (any, error) {
	s.update(p.TextDocument.URI, p.TextDocument.Text)
	return nil, nil
}

func (s *lspServer) didChange(p *textDocumentParams) (any, error) {
	if n := len(p.ContentChanges); n > 0 {
		s.update(p.TextDocument.URI, p.ContentChanges[n-1].Text)
	}
	return nil, nil
}

func (s *lspServer) didClose(p *textDocumentParams) (any, error) {
	delete(s.docs, p.TextDocument.URI)
	return nil, nil
}

func (s *lspServer) update(uri, text string) {
	s.docs[uri] = text
	s.pending = append(s.pending, rpcNotification{
		JSONRPC: "2.0",
		Method:  "textDocument/publishDiagnostics",
		Params: map[string]any{
			"uri":         uri,
			"diagnostics": diagnosticsFor(text, s.opts),
		},
	})
}

func (s *lspServer) completion(*textDocumentParams) (any, error) {
	return completionItems(s.ev), nil
}

func (s *lspServer) hover(p *textDocumentParams) (any, error) {
	text, ok := s.docs[p.TextDocument.URI]
	if !ok {
		return nil, nil
	}
	line := lineOf(text, p.Position.Line)
	column := runeColumn(line, p.Position.Character) + 1
	tok, ok := fundot.TokenAt(text, p.Position.Line+1, column)
	if !ok {
		return nil, nil
	}
	var h hoverResult
	h.Contents.Kind = "markdown"
	h.Contents.Value = fmt.Sprintf("`%s`\n\n%s", tok.Value, describeAtom(s.ev, tok.Value))
	h.Range = spanRange(text, tok.Pos, tok.Width)
	return h, nil
}

// diagnosticsFor reports every problem fundot.Diagnose finds in text.
func diagnosticsFor(text string, opts fundot.ParseOptions) []diagnostic {
	problems := fundot.Diagnose(text, opts)
	diags := make([]diagnostic, 0, len(problems))
	for _, perr := range problems {
		msg := perr.Msg
		if msg == "" {
			msg = perr.Kind.String()
		}
		diags = append(diags, diagnostic{
			Range:    spanRange(text, perr.Pos, perr.Width),
			Severity: severityError,
			Code:     perr.Kind.String(),
			Source:   "fundot",
			Message:  msg,
		})
	}
	return diags
}

func completionItems(ev *fundot.Evaluator) []completionItem {
	var items []completionItem
	for _, name := range ev.Names() {
		bound, _ := ev.Lookup(name)
		items = append(items, completionItem{Label: name, Kind: completionFunction, Detail: bound.String()})
	}
	for _, lit := range completionLiterals {
		items = append(items, completionItem{Label: lit, Kind: completionConstant, Detail: "literal"})
	}
	return items
}

func describeAtom(ev *fundot.Evaluator, v fundot.Value) string {
	if v.Kind() == fundot.KindSymbol {
		if bound, ok := ev.Lookup(v.Text()); ok {
			return "global bound to " + bound.String()
		}
		return "unbound symbol"
	}
	return v.Kind().String()
}

// spanRange converts a rune span at pos into an LSP range on pos's line.
// LSP counts characters in UTF-16 code units.
func spanRange(text string, pos fundot.Position, width int) lspRange {
	lineNo := max(pos.Line-1, 0)
	line := lineOf(text, lineNo)
	start := max(pos.Column-1, 0)
	return lspRange{
		Start: lspPosition{Line: lineNo, Character: utf16Column(line, start)},
		End:   lspPosition{Line: lineNo, Character: utf16Column(line, start+max(width, 1))},
	}
}

func lineOf(text string, n int) string {
	lines := strings.Split(text, "\n")
	if n < 0 || n >= len(lines) {
		return ""
	}
	return strings.TrimSuffix(lines[n], "\r")
}

// utf16Column counts the UTF-16 units in the first runes runes of line.
// Runes past the end of the line count one unit each.
func utf16Column(line string, runes int) int {
	units := 0
	for _, r := range line {
		if runes == 0 {
			return units
		}
		units += utf16.RuneLen(r)
		runes--
	}
	return units + runes
}

// runeColumn is the inverse of utf16Column.
func runeColumn(line string, units int) int {
	col := 0
	for _, r := range line {
		if units <= 0 {
			return col
		}
		units -= utf16.RuneLen(r)
		col++
	}
	return col + max(units, 0)
}

func (s *lspServer) readMessage() ([]byte, error) {
	header, err := s.in.ReadMIMEHeader()
	if err != nil {
		return nil, err
	}
	length := header.Get("Content-Length")
	n, err := strconv.Atoi(length)
	if err != nil || n < 0 {
		return nil, fmt.Errorf("lsp: bad Content-Length %q", length)
	}
	body := make([]byte, n)
	if _, err := io.ReadFull(s.in.R, body); err != nil {
		return nil, err
	}
	return body, nil
}

func (s *lspServer) reply(id json.RawMessage, result any, rerr *rpcError) error {
	resp := rpcResponse{JSONRPC: "2.0", ID: id, Error: rerr}
	if rerr == nil {
		data, err := json.Marshal(result)
		if err != nil {
			return err
		}
		raw := json.RawMessage(data)
		resp.Result = &raw
	}
	return s.send(resp)
}

func (s *lspServer) send(msg any) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Content-Length: %d\r\n\r\n", len(data))
	s.out.Write(data)
	return s.out.Flush()
}
