package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/pontaoski/sponge/ast"
	"github.com/pontaoski/sponge/errors"
	"github.com/pontaoski/sponge/interp"
	"github.com/pontaoski/sponge/parser"
	"github.com/pontaoski/sponge/types"
)

const (
	historyFile = ".sponge_history"
	promptMain  = "sponge> "
	promptCont  = "   ...> "
)

// incomplete reports whether src failed only because it ended too early,
// so the prompt should ask for another line.
func incomplete(err error) bool {
	perr, ok := errors.Cause(err).(errors.ParseError)
	return ok && perr.Got.Kind == types.EOF
}

// evalInput runs one complete chunk of input in the session.
func evalInput(s *interp.Session, src string) (interp.Value, error) {
	snippet, err := parser.ParseInteractive(src)
	if err != nil {
		return nil, err
	}
	for _, f := range snippet.Funcs {
		if err := s.Define(f); err != nil {
			return nil, err
		}
	}
	return s.Exec(snippet.Stmts)
}

type prompter interface {
	Prompt(prompt string) (string, error)
}

// readInput gathers lines until they form complete input. It reports false
// when the prompt is closed or fails.
func readInput(ln prompter) (string, bool) {
	var b strings.Builder

	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if err == io.EOF || err == liner.ErrPromptAborted {
			return "", false
		}
		if err != nil {
			plog.Errorf("reading input: %v", err)
			return "", false
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if _, err := parser.ParseInteractive(src); err != nil && incomplete(err) {
			continue
		}
		return src, true
	}
}

func repl(maxDepth int) error {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if home, err := os.UserHomeDir(); err != nil {
		plog.Warningf("no history: %v", err)
	} else {
		histPath := filepath.Join(home, historyFile)
		if f, err := os.Open(histPath); err == nil {
			ln.ReadHistory(f)
			f.Close()
		}
		defer func() {
			if f, err := os.Create(histPath); err == nil {
				ln.WriteHistory(f)
				f.Close()
			}
		}()
	}

	var opts []interp.Option
	if maxDepth > 0 {
		opts = append(opts, interp.WithMaxDepth(maxDepth))
	}
	session := interp.NewSession(interp.New(ast.NewProgram(), os.Stdout, opts...))

	for {
		src, ok := readInput(ln)
		if !ok {
			fmt.Println()
			return nil
		}
		if strings.TrimSpace(src) == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))

		v, err := evalInput(session, src)
		if err != nil {
			fmt.Fprintln(os.Stderr, errors.Cause(err))
			continue
		}
		if _, unit := v.(interp.Unit); !unit {
			fmt.Println(interp.Format(v))
		}
	}
}
