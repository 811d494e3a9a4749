// Package model is the boundary to the external sequence model.
package model

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

var ErrNoCommand = errors.New("generator command is empty")

// ExecContext carries the execution settings a generator runs with.
type ExecContext struct {
	Device string
	Seed   int64
}

// Generator predicts a continuation of a prompt of vocabulary indices. The
// returned sequence starts with the prompt.
type Generator interface {
	Generate(ctx context.Context, ec ExecContext, prompt []int) ([]int, error)
}

// commandError wraps a failed generator process with its stderr
type commandError struct {
	cmd     string
	output  string
	wrapped error
}

func (e *commandError) Error() string {
	return fmt.Sprintf("generator error: %s\nCommand: %s\nOutput: %s", e.wrapped, e.cmd, e.output)
}

func (e *commandError) Unwrap() error {
	return e.wrapped
}

func newCommandError(cmd *exec.Cmd, output []byte, err error) error {
	cmdStr := cmd.String()
	if len(cmdStr) > 200 {
		cmdStr = cmdStr[:200] + "..."
	}
	return &commandError{
		cmd:     cmdStr,
		output:  string(output),
		wrapped: err,
	}
}

// CommandGenerator runs an external process per prompt. The prompt is written
// to stdin as one comma separated line of indices and the prediction is read
// from stdout in the same format. Device and seed are passed as
// EVENTSEQ_DEVICE and EVENTSEQ_SEED.
type CommandGenerator struct {
	Command []string
}

func NewCommandGenerator(command []string) (*CommandGenerator, error) {
	if len(command) == 0 || command[0] == "" {
		return nil, ErrNoCommand
	}
	return &CommandGenerator{Command: command}, nil
}

func (g *CommandGenerator) Generate(ctx context.Context, ec ExecContext, prompt []int) ([]int, error) {
	cmd := command(ctx, g.Command)
	cmd.Env = append(os.Environ(),
		"EVENTSEQ_DEVICE="+ec.Device,
		"EVENTSEQ_SEED="+strconv.FormatInt(ec.Seed, 10),
	)
	cmd.Stdin = strings.NewReader(FormatIndices(prompt) + "\n")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	slog.Debug("running generator", "command", cmd.String(), "prompt", len(prompt), "device", ec.Device)
	if err := cmd.Run(); err != nil {
		return nil, newCommandError(cmd, stderr.Bytes(), err)
	}

	out, err := ParseIndices(stdout.String())
	if err != nil {
		return nil, fmt.Errorf("failed to parse generator output: %w", err)
	}
	return out, nil
}

func command(ctx context.Context, args []string) *exec.Cmd {
	return exec.CommandContext(ctx, args[0], args[1:]...)
}

// FormatIndices joins indices with commas.
func FormatIndices(indices []int) string {
	parts := make([]string, len(indices))
	for i, idx := range indices {
		parts[i] = strconv.Itoa(idx)
	}
	return strings.Join(parts, ",")
}

// ParseIndices reads indices separated by commas or whitespace.
func ParseIndices(s string) ([]int, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	out := make([]int, 0, len(fields))
	for _, f := range fields {
		idx, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("invalid index %q: %w", f, err)
		}
		out = append(out, idx)
	}
	return out, nil
}
