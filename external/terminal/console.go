package terminal

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
)

// Executor runs one line of user input and returns the text to show.
type Executor interface {
	Execute(ctx context.Context, line string) (string, error)
}

var quitCommands = map[string]bool{"/quit": true, "/exit": true}

// Console reads lines from in and hands them to the executor. A quit command
// calls quit; end of input leaves the rest of the application running.
type Console struct {
	in       io.Reader
	renderer *Renderer
	exec     Executor
	quit     func()
}

func NewConsole(in io.Reader, renderer *Renderer, exec Executor, quit func()) *Console {
	return &Console{in: in, renderer: renderer, exec: exec, quit: quit}
}

func (c *Console) Run(ctx context.Context) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					if err != nil {
						return err
					}
				default:
				}
				slog.Info("console input closed")
				return nil
			}
			if done := c.handle(ctx, line); done {
				return nil
			}
		}
	}
}

func (c *Console) handle(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if quitCommands[strings.ToLower(line)] {
		slog.Info("quit requested from console")
		c.quit()
		return true
	}
	reply, err := c.exec.Execute(ctx, line)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			slog.Warn("console command failed", "line", line, "error", err)
		}
		return false
	}
	c.renderer.Prompt(reply)
	return false
}
