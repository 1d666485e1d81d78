// Package judge puts a human in the loop, either on the terminal or behind a
// small HTTP API.
package judge

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jsphweid/evomelody/evolution"
	"github.com/pkg/errors"
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// Console asks for ratings on a terminal.
type Console struct {
	in        *bufio.Reader
	out       io.Writer
	maxRating int
}

func NewConsole(in io.Reader, out io.Writer, maxRating int) *Console {
	return &Console{in: bufio.NewReader(in), out: out, maxRating: maxRating}
}

func (c *Console) ask(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fmt.Fprint(c.out, promptStyle.Render(prompt))

	line, err := c.in.ReadString('\n')
	if err == io.EOF && line != "" {
		err = nil
	}
	if err != nil {
		return "", errors.Wrap(err, "could not read answer")
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (c *Console) Rate(ctx context.Context, cand evolution.Candidate) (string, error) {
	fmt.Fprintln(c.out, headerStyle.Render(fmt.Sprintf("generation %d · %d/%d", cand.Generation, cand.Index+1, cand.Total)))
	fmt.Fprintln(c.out, dimStyle.Render(cand.Genome.String()))
	return c.ask(ctx, fmt.Sprintf("Rating (0-%d)", c.maxRating))
}

func (c *Console) Acknowledge(ctx context.Context, _ evolution.Candidate, label string) error {
	_, err := c.ask(ctx, label)
	return err
}

func (c *Console) Continue(ctx context.Context, generation int) (bool, error) {
	fmt.Fprintln(c.out, headerStyle.Render(fmt.Sprintf("population %d done", generation)))
	answer, err := c.ask(ctx, "continue? [Y/n]")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(answer) != "n", nil
}
