package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// Wizard asks Steps one at a time and records accepted answers by Step ID.
type Wizard struct {
	in      LineReader
	out     io.Writer
	logger  hclog.Logger
	answers map[string]string
}

func NewWizard(in LineReader, out io.Writer, logger hclog.Logger) *Wizard {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Wizard{
		in:      in,
		out:     out,
		logger:  logger,
		answers: make(map[string]string),
	}
}

// QueryStep renders step, reads answers until one passes validation and returns it.
//
// "help" and "?" print the help text without counting as an answer; "exit" returns ErrExit.
// An empty answer is replaced by the step default when there is one.
// A 1-based option number is resolved to the option literal before validation.
func (w *Wizard) QueryStep(ctx context.Context, step Step) (string, error) {
	w.printStep(step)

	w.in.SetCompletions(OptionValues(step.Options))
	defer w.in.SetCompletions(nil)

	for {
		line, err := w.in.ReadLine(ctx, stylePrompt.Render("> "))
		if err != nil {
			return "", err
		}

		answer := strings.TrimSpace(line)
		switch strings.ToLower(answer) {
		case "help", "?":
			w.printHelp(step)
			continue
		case "exit":
			return "", ErrExit
		}

		if answer == "" {
			answer = step.Default
		}
		answer = ResolveOption(step.Options, answer)

		if step.Validator != nil {
			if err := step.Validator(answer); err != nil {
				w.logger.Debug("answer rejected", "step", step.ID, "reason", err)
				w.Error("Invalid input: %s", err)
				continue
			}
		}

		w.answers[step.ID] = answer
		w.logger.Debug("step answered", "step", step.ID)
		return answer, nil
	}
}

// Confirm asks a yes/no question. An empty answer selects the default.
func (w *Wizard) Confirm(ctx context.Context, prompt string, defaultYes bool) (bool, error) {
	hint := "(y/N)"
	if defaultYes {
		hint = "(Y/n)"
	}

	for {
		line, err := w.in.ReadLine(ctx, fmt.Sprintf("%s %s ", prompt, hint))
		if err != nil {
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "":
			return defaultYes, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		case "exit":
			return false, ErrExit
		default:
			w.Error("Please answer 'yes' or 'no'.")
		}
	}
}

// Answer returns the accepted answer for a Step ID.
func (w *Wizard) Answer(id string) (string, bool) {
	v, ok := w.answers[id]
	return v, ok
}

func (w *Wizard) Println(a ...any) {
	fmt.Fprintln(w.out, a...)
}

func (w *Wizard) Printf(format string, a ...any) {
	fmt.Fprintf(w.out, format, a...)
}

// Error prints a highlighted error line.
func (w *Wizard) Error(format string, a ...any) {
	fmt.Fprintln(w.out, Red(fmt.Sprintf(format, a...)))
}

// Success prints a highlighted progress line.
func (w *Wizard) Success(format string, a ...any) {
	fmt.Fprintln(w.out, Green(fmt.Sprintf(format, a...)))
}

// PrintAndLog prints msg to the operator and writes it to the log at info level.
func (w *Wizard) PrintAndLog(msg string) {
	w.logger.Info(msg)
	fmt.Fprintln(w.out, msg)
}

// ErrorAndLog prints msg highlighted and writes it to the log at error level.
func (w *Wizard) ErrorAndLog(msg string) {
	w.logger.Error(msg)
	w.Error("%s", msg)
}

func (w *Wizard) Close() error {
	return w.in.Close()
}

func (w *Wizard) printStep(step Step) {
	fmt.Fprintln(w.out)
	fmt.Fprintln(w.out, step.Prompt)
	w.printOptions(step.Options)
	if step.Default != "" {
		fmt.Fprintln(w.out, styleSubtitle.Render(fmt.Sprintf("Default: %s", step.Default)))
	}
}

func (w *Wizard) printOptions(opts []Option) {
	for i, o := range opts {
		if o.Description != "" {
			fmt.Fprintf(w.out, "%d) %s: %s\n", i+1, Highlight(o.Value), o.Description)
		} else {
			fmt.Fprintf(w.out, "%d) %s\n", i+1, Highlight(o.Value))
		}
	}
}

func (w *Wizard) printHelp(step Step) {
	if step.Help != "" {
		fmt.Fprintln(w.out, styleSubtitle.Render(step.Help))
	}
	w.printOptions(step.Options)
	if step.Default != "" {
		fmt.Fprintln(w.out, styleSubtitle.Render(fmt.Sprintf("Default: %s", step.Default)))
	}
}
