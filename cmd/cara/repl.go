package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterh/liner"

	"github.com/caralang/cara/pkg/runtime"
)

const (
	historyFile = ".cara_history"
	promptMain  = ">> "
	promptCont  = ".. "
	banner      = "Cara REPL. Ctrl+C cancels the current input, Ctrl+D exits."
)

// replSignals are the signals that terminate the REPL with exit 130.
var replSignals = []os.Signal{syscall.SIGINT, syscall.SIGTERM}

func cmdRepl(args []string) int {
	pretty := true
	for _, arg := range args {
		if arg == "--no-pretty" {
			pretty = false
		}
	}

	fmt.Println(banner)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	// Load history (best-effort)
	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	// liner's Ctrl+C handling is raw-mode keypresses, so SIGINT only
	// arrives here when delivered externally.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, replSignals...)
	go func() {
		<-sigCh
		ln.Close()
		os.Exit(130)
	}()

	rt := runtime.New(runtime.WithStdout(os.Stdout), runtime.WithRunID("repl"))
	session := rt.NewSession()

	for {
		code, ok := readCompleteInput(ln, rt, promptMain, promptCont)
		if !ok {
			fmt.Println()
			break
		}
		if strings.TrimSpace(code) == "" {
			continue
		}

		if err := session.Run(context.Background(), code, "<repl>"); err != nil {
			reportError(err, pretty)
			continue
		}

		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
	}

	// Persist history (best-effort)
	if f, err := os.Create(histPath); err == nil {
		_, _ = ln.WriteHistory(f)
		_ = f.Close()
	}
	return 0
}

// readCompleteInput reads lines until the parser accepts the buffer as
// a complete program, or returns the buffer early when the error
// cannot be cured by more input.
func readCompleteInput(ln *liner.State, rt *runtime.Runtime, prompt, cont string) (string, bool) {
	var b strings.Builder

	for {
		var line string
		var err error
		if b.Len() == 0 {
			line, err = ln.Prompt(prompt)
		} else {
			line, err = ln.Prompt(cont)
		}
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			// Ctrl+C aborts the current input; let the user start over.
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.TrimSpace(src) == "" {
			return src, true
		}

		diags := rt.Check(src, "<repl>")
		if len(diags) == 0 {
			return src, true
		}
		if looksIncomplete(diags[0].Message) {
			continue
		}
		return src, true
	}
}

// looksIncomplete classifies parse errors that likely mean more input
// is needed rather than a genuine mistake.
func looksIncomplete(msg string) bool {
	return strings.Contains(msg, "end of file")
}
