// Package repl is an interactive front end to the tool registry. Each line
// names a tool followed by key=value arguments:
//
//	convert_time time_str="2025-01-15 09:00:00" from_tz=UTC to_tz=Asia/Tokyo
//
// Results are printed as indented JSON.
package repl

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/chzyer/readline"
	"golang.org/x/term"

	appLog "datetimeday/internal/log"
	"datetimeday/internal/tools"
)

const prompt = "datetimeday> "

// errQuit is returned by Exec for exit and quit.
var errQuit = errors.New("quit")

// Session evaluates REPL lines against a registry.
type Session struct {
	registry *tools.Registry
	out      io.Writer
}

// NewSession returns a Session that writes results to out.
func NewSession(registry *tools.Registry, out io.Writer) *Session {
	return &Session{registry: registry, out: out}
}

// Run reads lines from in until EOF, exit or ctx cancellation. A terminal
// gets a readline prompt with history and tool name completion; anything
// else is read line by line without a prompt.
func Run(ctx context.Context, registry *tools.Registry, in *os.File, out io.Writer) error {
	s := NewSession(registry, out)
	if term.IsTerminal(int(in.Fd())) {
		return s.interactive(ctx)
	}
	return s.RunLines(ctx, in)
}

func (s *Session) interactive(ctx context.Context) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		AutoComplete:    s.completer(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("readline: %w", err)
	}
	var closeOnce sync.Once
	closeRL := func() { closeOnce.Do(func() { rl.Close() }) }
	defer closeRL()

	go func() {
		<-ctx.Done()
		closeRL()
	}()

	fmt.Fprintln(s.out, `Type "help" for usage, "tools" to list tools.`)
	for {
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("readline: %w", err)
		}
		if err := s.Exec(ctx, line); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			fmt.Fprintln(s.out, "error:", err)
		}
	}
}

// RunLines evaluates every line of in. Line errors are printed and do not
// stop the loop.
func (s *Session) RunLines(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		if err := s.Exec(ctx, scanner.Text()); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			fmt.Fprintln(s.out, "error:", err)
		}
	}
	return scanner.Err()
}

// Exec evaluates one line. Tool results, including error mappings, are
// printed; the returned error covers unusable input.
func (s *Session) Exec(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}

	words, err := tokenize(line)
	if err != nil {
		return err
	}

	switch words[0] {
	case "exit", "quit":
		return errQuit
	case "help":
		s.printHelp()
		return nil
	case "tools":
		s.printTools()
		return nil
	}

	tool, ok := s.registry.Lookup(words[0])
	if !ok {
		return fmt.Errorf("unknown tool %q (type \"tools\" to list them)", words[0])
	}
	args, err := buildArgs(tool, words[1:])
	if err != nil {
		return err
	}

	appLog.Debug("repl call", "tool", tool.Name(), "args", string(args))
	out, err := s.registry.Call(ctx, tool.Name(), args)
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	fmt.Fprintln(s.out, string(b))
	return nil
}

// buildArgs turns key=value words into a JSON object. Values of integer
// parameters are sent as numbers when they parse as integers; everything
// else is sent as a string and left to schema validation.
func buildArgs(tool *tools.Tool, words []string) (json.RawMessage, error) {
	args := make(map[string]any, len(words))
	for _, w := range words {
		key, value, ok := strings.Cut(w, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("expected key=value, got %q", w)
		}
		if _, dup := args[key]; dup {
			return nil, fmt.Errorf("argument %q given twice", key)
		}
		if tool.ParamType(key) == "integer" {
			if n, err := strconv.Atoi(value); err == nil {
				args[key] = n
				continue
			}
		}
		args[key] = value
	}
	return json.Marshal(args)
}

func (s *Session) printHelp() {
	fmt.Fprintln(s.out, "usage: <tool> [key=value ...]")
	fmt.Fprintln(s.out, `values containing spaces must be quoted, e.g. time_str="2025-01-15 09:00:00"`)
	fmt.Fprintln(s.out, "commands: help, tools, exit, quit")
	fmt.Fprintln(s.out)
	for _, t := range s.registry.Tools() {
		var params []string
		for _, p := range t.Params() {
			params = append(params, p+"=")
		}
		fmt.Fprintf(s.out, "  %s %s\n", t.Name(), strings.Join(params, " "))
	}
}

func (s *Session) printTools() {
	for _, d := range s.registry.List() {
		fmt.Fprintf(s.out, "%-14s %s\n", d.Name, d.Description)
	}
}

func (s *Session) completer() *readline.PrefixCompleter {
	items := []readline.PrefixCompleterInterface{
		readline.PcItem("help"),
		readline.PcItem("tools"),
		readline.PcItem("exit"),
	}
	for _, t := range s.registry.Tools() {
		var params []readline.PrefixCompleterInterface
		for _, p := range t.Params() {
			params = append(params, readline.PcItem(p+"="))
		}
		items = append(items, readline.PcItem(t.Name(), params...))
	}
	return readline.NewPrefixCompleter(items...)
}

// tokenize splits line on unquoted whitespace. Single quotes are literal;
// inside double quotes and bare words a backslash escapes the next byte.
func tokenize(line string) ([]string, error) {
	var (
		words   []string
		cur     strings.Builder
		inWord  bool
		quote   byte
		escaped bool
	)
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case escaped:
			cur.WriteByte(c)
			escaped = false
		case quote == '\'':
			if c == '\'' {
				quote = 0
			} else {
				cur.WriteByte(c)
			}
		case c == '\\':
			escaped = true
			inWord = true
		case quote == '"':
			if c == '"' {
				quote = 0
			} else {
				cur.WriteByte(c)
			}
		case c == '"' || c == '\'':
			quote = c
			inWord = true
		case c == ' ' || c == '\t':
			if inWord {
				words = append(words, cur.String())
				cur.Reset()
				inWord = false
			}
		default:
			cur.WriteByte(c)
			inWord = true
		}
	}
	if quote != 0 {
		return nil, errors.New("unterminated quote")
	}
	if escaped {
		return nil, errors.New("trailing backslash")
	}
	if inWord {
		words = append(words, cur.String())
	}
	return words, nil
}
