package playback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/foxseedlab/tsuyaku/internal/synthesis"
	"github.com/mattn/go-shellwords"
)

const artifactPlaceholder = "{file}"

// CommandPlayer runs an external player for each artifact and removes the file
// afterwards. The artifact path replaces {file} in the command, or is appended
// when the placeholder is absent.
type CommandPlayer struct {
	args []string
}

func NewCommandPlayer(command string) (*CommandPlayer, error) {
	args, err := shellwords.Parse(command)
	if err != nil {
		return nil, fmt.Errorf("parse playback command: %w", err)
	}
	if len(args) == 0 {
		return nil, errors.New("playback command is empty")
	}
	return &CommandPlayer{args: args}, nil
}

func (p *CommandPlayer) Play(ctx context.Context, artifact string) error {
	defer func() {
		if err := os.Remove(artifact); err != nil && !errors.Is(err, os.ErrNotExist) {
			slog.Warn("failed to remove audio artifact", "artifact", artifact, "error", err)
		}
	}()

	args := p.commandFor(artifact)
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("run %s: %w: %s", args[0], err, strings.TrimSpace(string(out)))
	}
	slog.Debug("audio artifact played", "artifact", artifact, "player", args[0])
	return nil
}

func (p *CommandPlayer) commandFor(artifact string) []string {
	args := make([]string, 0, len(p.args)+1)
	replaced := false
	for _, a := range p.args {
		if strings.Contains(a, artifactPlaceholder) {
			a = strings.ReplaceAll(a, artifactPlaceholder, artifact)
			replaced = true
		}
		args = append(args, a)
	}
	if !replaced {
		args = append(args, artifact)
	}
	return args
}

var _ synthesis.Player = (*CommandPlayer)(nil)
