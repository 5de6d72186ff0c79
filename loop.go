package monitor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
)

// CommandHelp lists the operator commands.
const CommandHelp = "Commands: arm, disarm, status, download, reset, ping, stats, quit"

// OperatorCommands are the words the prompt understands, for completion.
var OperatorCommands = []string{
	CmdArm, CmdDisarm, CmdStatus, CmdDownload, CmdReset, CmdPing,
	"stats", "help", "quit", "exit",
}

type inputResult struct {
	line string
	err  error
}

// operatorInput reads operator lines on a single goroutine, one line per
// request, so no new prompt is opened once the session has decided to stop.
type operatorInput struct {
	lines chan inputResult
	next  chan struct{}
	done  chan struct{}
}

func startInput(in LineSource) *operatorInput {
	oi := &operatorInput{
		lines: make(chan inputResult),
		next:  make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
	oi.next <- struct{}{}
	go oi.run(in)
	return oi
}

func (oi *operatorInput) run(in LineSource) {
	for {
		select {
		case <-oi.next:
		case <-oi.done:
			return
		}
		line, err := in.ReadLine()
		select {
		case oi.lines <- inputResult{line: line, err: err}:
		case <-oi.done:
			return
		}
		if err != nil {
			return
		}
	}
}

// request asks for the line after the one just received.
func (oi *operatorInput) request() {
	oi.next <- struct{}{}
}

func (oi *operatorInput) stop() {
	close(oi.done)
}

// Run connects to the gateway and runs the interactive session until the
// operator quits, input ends, ctx is cancelled or the link fails. Once
// connected, shutdown always happens: the live flag is cleared, the transport
// is closed, the reader goroutine is awaited and the final statistics are
// printed.
//
// Run returns the open error if the port cannot be opened, the transport
// error if the link failed, and nil otherwise.
//
// Operator input is read on its own goroutine. If Run stops because of ctx
// or a link failure while a ReadLine is pending, that goroutine stays
// blocked in ReadLine after Run returns and exits as soon as the call does.
func (s *Session) Run(ctx context.Context, in LineSource) error {
	if err := s.Connect(); err != nil {
		return err
	}

	dispatcher := NewDispatcher(s.console, s.tracker)
	reader := NewFrameReader(s.transport, dispatcher.Dispatch)
	reader.MaxLineLength = s.cfg.MaxLineLength

	var wg sync.WaitGroup
	readErr := make(chan error, 1)
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := reader.Run(s.Live); err != nil {
			readErr <- err
		}
		log.Debug("frame reader stopped")
	}()

	s.console.Printf("\nRocket Avionics Monitor\n%s\n%s\n", CommandHelp, strings.Repeat("-", 50))

	input := startInput(in)
	loopErr := s.loop(ctx, input, readErr)
	input.stop()

	if err := s.disconnect(); err != nil {
		log.Warnf("closing %s: %v", s.cfg.Port, err)
	}
	wg.Wait()
	s.PrintStats()
	return loopErr
}

func (s *Session) loop(ctx context.Context, input *operatorInput, readErr <-chan error) error {
	for {
		select {
		case <-ctx.Done():
			s.console.Println("\nInterrupted")
			return nil

		case err := <-readErr:
			s.console.Printf("Read error: %v\n", err)
			return fmt.Errorf("%w: read: %w", ErrLink, err)

		case res := <-input.lines:
			switch {
			case res.err == nil:
			case errors.Is(res.err, io.EOF):
				return nil
			case errors.Is(res.err, ErrInterrupted):
				s.console.Println("\nInterrupted")
				return nil
			default:
				return fmt.Errorf("operator input: %w", res.err)
			}

			stop, err := s.Execute(res.line)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrLink, err)
			}
			if stop {
				return nil
			}
			input.request()
		}
	}
}

// Execute runs one operator command. It reports stop when the operator asked
// to quit, and returns an error when a command could not be written to the
// transport.
func (s *Session) Execute(input string) (stop bool, err error) {
	cmd := strings.ToLower(strings.TrimSpace(input))
	switch cmd {
	case "quit", "exit", "q":
		return true, nil
	case CmdArm, CmdDisarm, CmdStatus, CmdDownload, CmdReset, CmdPing:
		if s.sender == nil {
			return true, errors.New("not connected")
		}
		if _, err := s.sender.Send(cmd); err != nil {
			s.console.Printf("Write error: %v\n", err)
			return true, err
		}
	case "stats":
		s.PrintStats()
	case "help":
		s.console.Println(CommandHelp)
	case "":
	default:
		s.console.Printf("Unknown command: %s\n", cmd)
	}
	return false, nil
}
