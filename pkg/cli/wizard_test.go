package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var outcomeStep = Step{
	ID:     "ballot_outcome",
	Prompt: "Choose the outcome for your ballot.",
	Help:   "'yay' is for supporting the proposal",
	Options: []Option{
		{Value: "yay", Description: "Vote for accepting the proposal"},
		{Value: "nay", Description: "Vote for rejecting the proposal"},
		{Value: "pass"},
	},
}

func init() {
	outcomeStep.Validator = Chain(RequiredField, EnumRange(outcomeStep.Options))
}

func newScriptedWizard(input string) (*Wizard, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return NewWizard(NewBasicReader(strings.NewReader(input), out), out, nil), out
}

func TestQueryStep(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		step     Step
		input    string
		expected string
	}{
		{"literal", outcomeStep, "nay\n", "nay"},
		{"index", outcomeStep, "3\n", "pass"},
		{"surrounding whitespace", outcomeStep, "  yay  \n", "yay"},
		{"help does not consume an attempt", outcomeStep, "help\n?\nHELP\nyay\n", "yay"},
		{"rejected then accepted", outcomeStep, "maybe\n7\n\n2\n", "nay"},
		{"default on empty", Step{ID: "alias", Prompt: "Alias?", Default: "baker", Validator: RequiredField}, "\n", "baker"},
		{"default resolved as index", Step{ID: "outcome", Prompt: "?", Default: "1", Options: outcomeStep.Options, Validator: EnumRange(outcomeStep.Options)}, "\n", "yay"},
		{"no validator accepts empty", Step{ID: "free", Prompt: "Anything?"}, "\n", ""},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			w, _ := newScriptedWizard(c.input)
			defer w.Close()

			value, err := w.QueryStep(context.Background(), c.step)
			require.NoError(t, err)
			assert.Equal(t, c.expected, value)

			stored, ok := w.Answer(c.step.ID)
			require.True(t, ok)
			assert.Equal(t, c.expected, stored)
		})
	}
}

func TestQueryStep_Output(t *testing.T) {
	t.Parallel()

	w, out := newScriptedWizard("?\nmaybe\nyay\n")
	defer w.Close()

	_, err := w.QueryStep(context.Background(), outcomeStep)
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "Choose the outcome for your ballot.")
	assert.Contains(t, text, "Vote for rejecting the proposal")
	assert.Contains(t, text, "'yay' is for supporting the proposal")
	assert.Contains(t, text, "Invalid input")
	assert.Contains(t, text, "please choose one of the provided values")
}

func TestQueryStep_Cancellation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		input    string
		expected error
	}{
		{"exit", "exit\n", ErrExit},
		{"exit any case", "EXIT\n", ErrExit},
		{"exit after rejection", "maybe\nexit\n", ErrExit},
		{"end of input", "maybe\n", ErrEOF},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			w, _ := newScriptedWizard(c.input)
			defer w.Close()

			_, err := w.QueryStep(context.Background(), outcomeStep)
			require.ErrorIs(t, err, c.expected)
			require.ErrorIs(t, err, ErrCancelled)

			_, ok := w.Answer(outcomeStep.ID)
			assert.False(t, ok)
		})
	}
}

func TestQueryStep_ContextCancelled(t *testing.T) {
	t.Parallel()

	pr, pw := io.Pipe()
	defer pw.Close()

	out := &bytes.Buffer{}
	w := NewWizard(NewBasicReader(pr, out), out, nil)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := w.QueryStep(ctx, outcomeStep)
	require.True(t, errors.Is(err, ErrInterrupted))
}

func TestQueryStep_RequeryOverwrites(t *testing.T) {
	t.Parallel()

	w, _ := newScriptedWizard("yay\nnay\n")
	defer w.Close()

	_, err := w.QueryStep(context.Background(), outcomeStep)
	require.NoError(t, err)
	_, err = w.QueryStep(context.Background(), outcomeStep)
	require.NoError(t, err)

	v, _ := w.Answer(outcomeStep.ID)
	assert.Equal(t, "nay", v)
}

func TestConfirm(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		input      string
		defaultYes bool
		expected   bool
	}{
		{"default yes", "\n", true, true},
		{"default no", "\n", false, false},
		{"yes", "yes\n", false, true},
		{"y", "Y\n", false, true},
		{"no", "no\n", true, false},
		{"retry on garbage", "maybe\nn\n", true, false},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			w, _ := newScriptedWizard(c.input)
			defer w.Close()

			ok, err := w.Confirm(context.Background(), "Does this look correct?", c.defaultYes)
			require.NoError(t, err)
			assert.Equal(t, c.expected, ok)
		})
	}
}

func TestConfirm_Exit(t *testing.T) {
	t.Parallel()

	w, _ := newScriptedWizard("exit\n")
	defer w.Close()

	_, err := w.Confirm(context.Background(), "Does this look correct?", true)
	require.ErrorIs(t, err, ErrCancelled)
}
