// Copyright 2025-2026 The DiscordChatter Authors

// Package bedrock runs the Bedrock dedicated server as a child process and
// adapts its console to the host.Host interface. Chat and session lifecycle
// events are recovered from the server's log stream; outbound broadcasts are
// written to the server's stdin as `say` and `tellraw` commands.
package bedrock

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/mcbridge/discordchatter/pkg/host"
)

// Wrapper supervises a bedrock_server process. The wrapper's own stdin acts
// as the operator console: lines starting with a registered command verb are
// dispatched to the command handler, everything else is passed through to
// the server.
type Wrapper struct {
	log  zerolog.Logger
	args []string

	cmd      *exec.Cmd
	stdin    io.WriteCloser
	stdinMu  sync.Mutex
	console  io.Reader
	events   chan any
	commands map[string]host.CommandFunc
}

var _ host.Host = (*Wrapper)(nil)

// New creates a wrapper for the given server command line. The command is
// not started until Start is called.
func New(args []string, log zerolog.Logger) *Wrapper {
	return &Wrapper{
		log:      log.With().Str("component", "bedrock").Logger(),
		args:     args,
		console:  os.Stdin,
		events:   make(chan any, 64),
		commands: make(map[string]host.CommandFunc),
	}
}

// RegisterCommand implements host.Host. Registration must happen before
// Start; the command map is read without locking afterwards.
func (w *Wrapper) RegisterCommand(verb string, fn host.CommandFunc) {
	w.commands[verb] = fn
}

// Events implements host.Host.
func (w *Wrapper) Events() <-chan any {
	return w.events
}

// Start launches the server process and begins scanning its output and the
// operator console.
func (w *Wrapper) Start() error {
	if len(w.args) == 0 {
		return errors.New("no server command configured")
	}
	cmd := exec.Command(w.args[0], w.args[1:]...)
	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("failed to open server stdin: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start server process: %w", err)
	}
	w.cmd = cmd
	w.stdin = stdin
	w.log.Info().Str("command", strings.Join(w.args, " ")).Int("pid", cmd.Process.Pid).Msg("Server process started")

	go func() {
		err := cmd.Wait()
		if err != nil {
			w.log.Warn().Err(err).Msg("Server process exited with error")
		} else {
			w.log.Info().Msg("Server process exited")
		}
		pw.Close()
	}()
	go w.scanServerOutput(pr)
	go w.scanConsole()
	return nil
}

// scanServerOutput reads the server log stream until the process exits,
// echoing every line to the wrapper's stdout and emitting parsed host
// events. Closes the event channel once the stream ends.
func (w *Wrapper) scanServerOutput(r io.Reader) {
	sawClose := false
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		fmt.Fprintln(os.Stdout, line)

		ev, ok := parseLogLine(line)
		if !ok {
			continue
		}
		if chat, isChat := ev.(host.ChatEvent); isChat {
			if w.dispatchChatCommand(chat) {
				continue
			}
		}
		if _, isClose := ev.(host.ServerCloseEvent); isClose {
			if sawClose {
				continue
			}
			sawClose = true
		}
		w.events <- ev
	}
	if err := scanner.Err(); err != nil {
		w.log.Error().Err(err).Msg("Server output scan failed")
	}
	if !sawClose {
		w.events <- host.ServerCloseEvent{}
	}
	close(w.events)
}

// dispatchChatCommand checks whether a chat message is an invocation of a
// registered command verb and dispatches it with a player invoker if so.
func (w *Wrapper) dispatchChatCommand(chat host.ChatEvent) bool {
	fields := strings.Fields(chat.Text)
	if len(fields) == 0 {
		return false
	}
	fn, ok := w.commands[fields[0]]
	if !ok {
		return false
	}
	fn(host.Invoker{Player: chat.Sender}, fields[1:])
	return true
}

// scanConsole reads the operator console. Registered command verbs are
// dispatched with a console invoker; any other line is forwarded verbatim
// to the server.
func (w *Wrapper) scanConsole() {
	scanner := bufio.NewScanner(w.console)
	for scanner.Scan() {
		line := scanner.Text()
		fields := strings.Fields(line)
		if len(fields) > 0 {
			if fn, ok := w.commands[fields[0]]; ok {
				fn(host.Invoker{Console: true}, fields[1:])
				continue
			}
		}
		if err := w.writeLine(line); err != nil {
			w.log.Error().Err(err).Msg("Failed to forward console input")
		}
	}
}

// Broadcast implements host.Host by issuing a `say` command.
func (w *Wrapper) Broadcast(text string) error {
	return w.writeLine("say " + text)
}

// Tell implements host.Host by issuing a `tellraw` command addressed to a
// single player.
func (w *Wrapper) Tell(player, text string) error {
	payload, err := json.Marshal(map[string]any{
		"rawtext": []map[string]string{{"text": text}},
	})
	if err != nil {
		return fmt.Errorf("failed to encode tellraw payload: %w", err)
	}
	return w.writeLine(fmt.Sprintf("tellraw %q %s", player, payload))
}

// Stop asks the server to shut down gracefully. The event channel closes
// once the process has exited.
func (w *Wrapper) Stop() {
	if err := w.writeLine("stop"); err != nil {
		w.log.Error().Err(err).Msg("Failed to send stop command")
	}
}

func (w *Wrapper) writeLine(line string) error {
	w.stdinMu.Lock()
	defer w.stdinMu.Unlock()
	if w.stdin == nil {
		return errors.New("server process is not running")
	}
	_, err := io.WriteString(w.stdin, line+"\n")
	return err
}
