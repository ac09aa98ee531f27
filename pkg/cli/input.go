package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/chzyer/readline"
	"golang.org/x/term"
)

var (
	// ErrCancelled is the root of every error that ends the wizard at the operator's request.
	ErrCancelled = errors.New("wizard cancelled")

	ErrExit        = fmt.Errorf("%w: exit requested", ErrCancelled)
	ErrInterrupted = fmt.Errorf("%w: received keyboard interrupt", ErrCancelled)
	ErrEOF         = fmt.Errorf("%w: reached EOF", ErrCancelled)
)

// LineReader reads one line of operator input at a time.
type LineReader interface {
	ReadLine(ctx context.Context, prompt string) (string, error)
	// SetCompletions sets the tab-completion candidates for the next reads.
	SetCompletions(values []string)
	Close() error
}

// NewTerminalReader returns a readline-backed reader when in is a terminal,
// and a plain line scanner otherwise.
func NewTerminalReader(in *os.File, out io.Writer) LineReader {
	if !term.IsTerminal(int(in.Fd())) { // #nosec G115 - file descriptors are small integers
		return NewBasicReader(in, out)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          stylePrompt.Render("> "),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		Stdout:          out,
	})
	if err != nil {
		fmt.Fprintf(out, "Failed to create readline instance, falling back to basic input: %v\n", err)
		return NewBasicReader(in, out)
	}
	return &readlineReader{rl: rl}
}

type readlineReader struct {
	rl *readline.Instance
}

func (r *readlineReader) ReadLine(ctx context.Context, prompt string) (string, error) {
	if ctx.Err() != nil {
		return "", ErrInterrupted
	}
	// Closing the instance unblocks Readline when a signal arrives mid-prompt.
	stop := context.AfterFunc(ctx, func() { _ = r.rl.Close() })
	defer stop()

	r.rl.SetPrompt(prompt)
	line, err := r.rl.Readline()
	switch {
	case ctx.Err() != nil:
		return "", ErrInterrupted
	case errors.Is(err, readline.ErrInterrupt):
		return "", ErrInterrupted
	case errors.Is(err, io.EOF):
		return "", ErrEOF
	case err != nil:
		return "", fmt.Errorf("error reading input: %w", err)
	}
	return line, nil
}

func (r *readlineReader) SetCompletions(values []string) {
	if len(values) == 0 {
		r.rl.Config.AutoComplete = nil
		return
	}
	items := make([]readline.PrefixCompleterInterface, 0, len(values))
	for _, v := range values {
		items = append(items, readline.PcItem(v))
	}
	r.rl.Config.AutoComplete = readline.NewPrefixCompleter(items...)
}

func (r *readlineReader) Close() error {
	return r.rl.Close()
}

// basicReader is used when stdin is not a terminal (pipes, tests).
// It reads one byte at a time and only while a prompt is waiting, so whatever follows
// the current answer stays in the stream for child processes sharing stdin.
type basicReader struct {
	in  io.Reader
	out io.Writer

	mu sync.Mutex
	// pending is a read left behind by a cancelled prompt; the next prompt takes it over.
	pending chan lineResult
}

type lineResult struct {
	line string
	err  error
}

// NewBasicReader reads newline-terminated answers from in, echoing prompts to out.
func NewBasicReader(in io.Reader, out io.Writer) LineReader {
	return &basicReader{in: in, out: out}
}

func (r *basicReader) ReadLine(ctx context.Context, prompt string) (string, error) {
	fmt.Fprint(r.out, prompt)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.pending == nil {
		r.pending = make(chan lineResult, 1)
		go func(ch chan<- lineResult) {
			line, err := readLine(r.in)
			ch <- lineResult{line: line, err: err}
		}(r.pending)
	}

	select {
	case <-ctx.Done():
		return "", ErrInterrupted
	case res := <-r.pending:
		r.pending = nil
		switch {
		case errors.Is(res.err, io.EOF):
			return "", ErrEOF
		case res.err != nil:
			return "", fmt.Errorf("error reading input: %w", res.err)
		}
		return res.line, nil
	}
}

// readLine returns the next line without its "\n" or "\r\n" terminator.
// A final line without a terminator is returned as is; io.EOF comes on the following call.
func readLine(in io.Reader) (string, error) {
	var (
		line []byte
		b    [1]byte
	)
	for {
		n, err := in.Read(b[:])
		if n > 0 {
			if b[0] == '\n' {
				return strings.TrimSuffix(string(line), "\r"), nil
			}
			line = append(line, b[0])
		}
		if err != nil {
			if errors.Is(err, io.EOF) && len(line) > 0 {
				return strings.TrimSuffix(string(line), "\r"), nil
			}
			return "", err
		}
	}
}

func (r *basicReader) SetCompletions([]string) {}

func (r *basicReader) Close() error {
	return nil
}
