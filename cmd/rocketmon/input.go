package main

import (
	"errors"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"
	log "github.com/sirupsen/logrus"

	monitor "github.com/luhtfiimanal/rocketmon"
)

// input is the operator's side of the session.
type input interface {
	monitor.LineSource
	Close() error
}

// newInput uses a line editor when stdin is a terminal and a plain scanner
// otherwise, so piped command scripts behave.
func newInput(historyFile string) input {
	fi, err := os.Stdin.Stat()
	if err != nil || fi.Mode()&os.ModeCharDevice == 0 {
		return scannerInput{monitor.NewScannerSource(os.Stdin)}
	}
	return newPrompt(historyFile)
}

type scannerInput struct {
	*monitor.ScannerSource
}

func (scannerInput) Close() error { return nil }

// prompt reads operator commands through liner: editing, history,
// completion of command names, and Ctrl-C as an abort.
type prompt struct {
	shell       *liner.State
	historyFile string
}

func newPrompt(historyFile string) *prompt {
	shell := liner.NewLiner()
	shell.SetCtrlCAborts(true) // ^C cancels current line
	shell.SetCompleter(func(line string) (c []string) {
		for _, name := range monitor.OperatorCommands {
			if strings.HasPrefix(name, strings.ToLower(line)) {
				c = append(c, name)
			}
		}
		return
	})

	if historyFile != "" {
		if f, err := os.Open(historyFile); err == nil {
			shell.ReadHistory(f)
			f.Close()
		}
	}
	return &prompt{shell: shell, historyFile: historyFile}
}

func (p *prompt) ReadLine() (string, error) {
	line, err := p.shell.Prompt("")
	switch {
	case errors.Is(err, liner.ErrPromptAborted):
		return "", monitor.ErrInterrupted
	case errors.Is(err, io.EOF):
		return "", io.EOF
	case err != nil:
		return "", err
	}
	if strings.TrimSpace(line) != "" {
		p.shell.AppendHistory(line)
	}
	return line, nil
}

func (p *prompt) Close() error {
	if p.historyFile != "" {
		if f, err := os.Create(p.historyFile); err == nil {
			if _, err := p.shell.WriteHistory(f); err != nil {
				log.Warnf("writing history: %v", err)
			}
			f.Close()
		}
	}
	return p.shell.Close()
}
