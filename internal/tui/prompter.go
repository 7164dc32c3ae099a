// Package tui collects operator input, either through a Bubble Tea terminal
// UI or through plain line-based prompts when no terminal is attached.
package tui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
)

// ErrAborted is returned when the operator cancels a prompt (Ctrl+C, Esc or
// end of input).
var ErrAborted = errors.New("tui: prompt aborted")

// Prompter asks the operator questions.
type Prompter interface {
	// Select returns the index of the chosen entry in choices.
	Select(ctx context.Context, question string, choices []string) (int, error)
	// Input returns the typed answer, or def when the answer is empty.
	Input(ctx context.Context, question, def string) (string, error)
}

// Verify at compile time that both prompters implement Prompter.
var (
	_ Prompter = (*PlainPrompter)(nil)
	_ Prompter = (*TUIPrompter)(nil)
)

// PrompterOptions configures prompter creation.
type PrompterOptions struct {
	In         io.Reader // Input source (default: os.Stdin).
	Out        io.Writer // Output destination (default: os.Stdout).
	ForcePlain bool      // Force plain prompts even if TTY.
}

// NewPrompter returns a TUI prompter when the output is a TTY, or a plain
// prompter otherwise. ForcePlain overrides TTY detection.
func NewPrompter(opts PrompterOptions) Prompter {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	if opts.ForcePlain || !isTTY(opts.Out) {
		return NewPlainPrompter(opts.In, opts.Out)
	}
	return &TUIPrompter{in: opts.In, out: opts.Out}
}

// isTTY reports whether w is connected to a terminal.
func isTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// PlainPrompter asks questions as numbered text lines.
type PlainPrompter struct {
	r       *bufio.Reader
	w       io.Writer
	pending chan lineResult // read still in flight after a cancelled prompt
}

type lineResult struct {
	line string
	err  error
}

// NewPlainPrompter creates a PlainPrompter reading answers from in.
func NewPlainPrompter(in io.Reader, out io.Writer) *PlainPrompter {
	return &PlainPrompter{r: bufio.NewReader(in), w: out}
}

// Select prints the numbered choices and reads an answer, accepting either
// the number or the choice text. Invalid answers ask again.
func (p *PlainPrompter) Select(ctx context.Context, question string, choices []string) (int, error) {
	if len(choices) == 0 {
		return -1, errors.New("tui: select without choices")
	}
	for {
		if err := ctx.Err(); err != nil {
			return -1, err
		}
		_, _ = fmt.Fprintf(p.w, "? %s\n", question)
		for i, c := range choices {
			_, _ = fmt.Fprintf(p.w, "  %d) %s\n", i+1, c)
		}
		_, _ = fmt.Fprintf(p.w, "  [1-%d]: ", len(choices))

		line, err := p.readLine(ctx)
		if err != nil {
			return -1, err
		}
		if idx, ok := matchChoice(strings.TrimSpace(line), choices); ok {
			return idx, nil
		}
	}
}

// Input prints the question with its default and reads one line. The line
// is returned verbatim; an empty line yields def.
func (p *PlainPrompter) Input(ctx context.Context, question, def string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if def != "" {
		_, _ = fmt.Fprintf(p.w, "? %s (%s) ", question, def)
	} else {
		_, _ = fmt.Fprintf(p.w, "? %s ", question)
	}

	line, err := p.readLine(ctx)
	if err != nil {
		return "", err
	}
	if line == "" {
		return def, nil
	}
	return line, nil
}

// readLine waits for the next line or for ctx to be cancelled. A read
// abandoned by cancellation is picked up by the next call.
func (p *PlainPrompter) readLine(ctx context.Context) (string, error) {
	if p.pending == nil {
		ch := make(chan lineResult, 1)
		go func() {
			line, err := p.r.ReadString('\n')
			ch <- lineResult{line: line, err: err}
		}()
		p.pending = ch
	}

	var res lineResult
	select {
	case <-ctx.Done():
		_, _ = fmt.Fprintln(p.w)
		return "", ctx.Err()
	case res = <-p.pending:
		p.pending = nil
	}

	if res.err != nil {
		if !errors.Is(res.err, io.EOF) {
			return "", fmt.Errorf("tui: reading input: %w", res.err)
		}
		if res.line == "" {
			_, _ = fmt.Fprintln(p.w)
			return "", ErrAborted
		}
	}
	return strings.TrimRight(res.line, "\r\n"), nil
}

// matchChoice resolves a 1-based number or a case-insensitive choice label.
func matchChoice(answer string, choices []string) (int, bool) {
	if n, err := strconv.Atoi(answer); err == nil {
		if n >= 1 && n <= len(choices) {
			return n - 1, true
		}
		return -1, false
	}
	for i, c := range choices {
		if answer != "" && strings.EqualFold(answer, c) {
			return i, true
		}
	}
	return -1, false
}

// TUIPrompter runs one Bubble Tea program per question.
// Falls back to PlainPrompter if a program fails to start.
type TUIPrompter struct {
	in       io.Reader
	out      io.Writer
	fallback *PlainPrompter
}

// Select shows a cursor list and returns the chosen index.
func (p *TUIPrompter) Select(ctx context.Context, question string, choices []string) (int, error) {
	if p.fallback != nil {
		return p.fallback.Select(ctx, question, choices)
	}
	if len(choices) == 0 {
		return -1, errors.New("tui: select without choices")
	}

	final, err := p.run(ctx, NewSelectModel(question, choices))
	if err != nil {
		if errors.Is(err, errStartFailed) {
			return p.fallback.Select(ctx, question, choices)
		}
		return -1, err
	}
	idx, ok := final.(SelectModel).Selected()
	if !ok {
		return -1, ErrAborted
	}
	return idx, nil
}

// Input shows a text field prefilled with def as placeholder.
func (p *TUIPrompter) Input(ctx context.Context, question, def string) (string, error) {
	if p.fallback != nil {
		return p.fallback.Input(ctx, question, def)
	}

	final, err := p.run(ctx, NewInputModel(question, def))
	if err != nil {
		if errors.Is(err, errStartFailed) {
			return p.fallback.Input(ctx, question, def)
		}
		return "", err
	}
	value, ok := final.(InputModel).Value()
	if !ok {
		return "", ErrAborted
	}
	return value, nil
}

var errStartFailed = errors.New("tui: program failed")

// run executes model to completion. A cancelled context is returned as is;
// any other program failure switches this prompter to plain mode.
func (p *TUIPrompter) run(ctx context.Context, model tea.Model) (tea.Model, error) {
	opts := []tea.ProgramOption{tea.WithContext(ctx), tea.WithOutput(p.out)}
	if p.in != nil {
		opts = append(opts, tea.WithInput(p.in))
	}

	final, err := tea.NewProgram(model, opts...).Run()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		in := p.in
		if in == nil {
			in = os.Stdin
		}
		p.fallback = NewPlainPrompter(in, p.out)
		return nil, fmt.Errorf("%w: %w", errStartFailed, err)
	}
	return final, nil
}
