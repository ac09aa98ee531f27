package voting

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zdunecki/tezosvote/pkg/cli"
	"github.com/zdunecki/tezosvote/pkg/octez"
	"github.com/zdunecki/tezosvote/pkg/utils"
)

func TestProcessProposalPeriod_NewHashIsSubmitted(t *testing.T) {
	t.Parallel()

	client := &fakeClient{}
	c, _ := newTestController(t, "2\n"+parisHash+"\n", client, activeServices())
	c.cfg.ProposalHashes = []string{singleProposal}

	require.NoError(t, c.ProcessProposalPeriod(context.Background()))
	assert.Equal(t, []string{parisHash}, client.proposals)
	assert.Equal(t, NewProposalOption, c.cfg.ChosenHash)
	assert.Equal(t, parisHash, c.cfg.NewProposalHash)
}

func TestProcessProposalPeriod_ExistingHash(t *testing.T) {
	t.Parallel()

	client := &fakeClient{}
	c, _ := newTestController(t, singleProposal+"\n", client, activeServices())
	c.cfg.ProposalHashes = []string{singleProposal}

	require.NoError(t, c.ProcessProposalPeriod(context.Background()))
	assert.Equal(t, []string{singleProposal}, client.proposals)
	assert.Empty(t, c.cfg.NewProposalHash)
}

func TestProcessProposalPeriod_MalformedNewHashIsRequeried(t *testing.T) {
	t.Parallel()

	client := &fakeClient{}
	c, out := newTestController(t, "2\nPnotAHash\n"+quebecHash+"\n", client, activeServices())
	c.cfg.ProposalHashes = []string{singleProposal}

	require.NoError(t, c.ProcessProposalPeriod(context.Background()))
	assert.Equal(t, []string{quebecHash}, client.proposals)
	assert.Contains(t, out.String(), "invalid protocol hash")
}

func TestProcessProposalPeriod_Failures(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		stderr  string
		message string
	}{
		{"unauthorized", "Error:\n  Unauthorized proposal\n", "not present in the voting listings"},
		{"wrong period", "Error:\n  Not in a proposal period\n", "voting period has already advanced"},
		{"too many", "Error:\n  Too many proposals\n", "more than 20 proposals"},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			// A single answer: asking again would hit the end of input.
			client := &fakeClient{proposalResults: []utils.Result{failed(c.stderr)}}
			ctrl, out := newTestController(t, "1\n", client, activeServices())
			ctrl.cfg.ProposalHashes = []string{singleProposal}

			require.NoError(t, ctrl.ProcessProposalPeriod(context.Background()))
			assert.Len(t, client.proposals, 1)
			assert.Contains(t, out.String(), c.message)
			assert.Contains(t, out.String(), "Please check your baker data and possibly try again.")
		})
	}
}

func TestProcessProposalPeriod_InvalidProposalAsksAgain(t *testing.T) {
	t.Parallel()

	client := &fakeClient{proposalResults: []utils.Result{
		failed("Error:\n  Invalid proposal\n"),
		failed("Error:\n  invalid proposal\n"),
		{},
	}}
	input := "2\n" + quebecHash + "\n" + "2\n" + parisHash + "\n" + "1\n"
	c, out := newTestController(t, input, client, activeServices())
	c.cfg.ProposalHashes = []string{singleProposal}

	require.NoError(t, c.ProcessProposalPeriod(context.Background()))
	assert.Equal(t, []string{quebecHash, parisHash, singleProposal}, client.proposals)
	assert.Contains(t, out.String(), "The submitted proposal hash is invalid.")
}

func TestProcessProposalPeriod_InvalidProposalCancellable(t *testing.T) {
	t.Parallel()

	client := &fakeClient{proposalResults: []utils.Result{failed("Error:\n  Invalid proposal\n")}}
	c, _ := newTestController(t, "1\nexit\n", client, activeServices())
	c.cfg.ProposalHashes = []string{singleProposal}

	err := c.ProcessProposalPeriod(context.Background())
	require.ErrorIs(t, err, cli.ErrCancelled)
	assert.Len(t, client.proposals, 1)
}

func TestProcessProposalPeriod_UnknownFailureIsFatal(t *testing.T) {
	t.Parallel()

	stderr := "Error:\n  Empty proposal\n"
	client := &fakeClient{proposalResults: []utils.Result{failed(stderr)}}
	c, out := newTestController(t, "1\n", client, activeServices())
	c.cfg.ProposalHashes = []string{singleProposal}

	err := c.ProcessProposalPeriod(context.Background())
	var cmdErr *octez.CommandError
	require.True(t, errors.As(err, &cmdErr))
	assert.Contains(t, err.Error(), "Empty proposal")
	assert.Equal(t, 1, cmdErr.ExitCode)
	assert.Contains(t, out.String(), "Something went wrong when calling octez-client")
}

func TestProcessVotingPeriod_SubmitsBallot(t *testing.T) {
	t.Parallel()

	client := &fakeClient{}
	c, out := newTestController(t, "nay\n", client, activeServices())
	c.cfg.AmendmentPhase = "exploration"
	c.cfg.ProposalHashes = []string{parisHash}

	require.NoError(t, c.ProcessVotingPeriod(context.Background()))
	assert.Equal(t, [][2]string{{parisHash, "nay"}}, client.ballots)
	assert.Equal(t, "nay", c.cfg.BallotOutcome)
	assert.NotContains(t, out.String(), "Cannot vote")
}

func TestProcessVotingPeriod_OutcomeByIndex(t *testing.T) {
	t.Parallel()

	client := &fakeClient{}
	c, _ := newTestController(t, "abstain\n3\n", client, activeServices())
	c.cfg.ProposalHashes = []string{parisHash}

	require.NoError(t, c.ProcessVotingPeriod(context.Background()))
	assert.Equal(t, [][2]string{{parisHash, "pass"}}, client.ballots)
}

// Unauthorized and wrong-period checks are independent: each matching error is reported,
// and only a failure matching neither is fatal.
func TestProcessVotingPeriod_Failures(t *testing.T) {
	t.Parallel()

	const (
		unauthorizedMsg = "Cannot vote because of an unauthorized ballot."
		wrongPeriodMsg  = "Cannot vote because the voting period is no longer 'promotion'."
	)

	cases := []struct {
		name        string
		stderr      string
		fatal       bool
		contains    []string
		notContains []string
	}{
		{
			name:        "unauthorized only",
			stderr:      "Error:\n  Unauthorized ballot\n",
			contains:    []string{unauthorizedMsg, "already voted"},
			notContains: []string{wrongPeriodMsg},
		},
		{
			name:        "wrong period only",
			stderr:      "Error:\n  Not in Exploration or Promotion period\n",
			contains:    []string{wrongPeriodMsg},
			notContains: []string{unauthorizedMsg},
		},
		{
			name:     "both",
			stderr:   "Error:\n  Unauthorized ballot\n  Not in Exploration or Promotion period\n",
			contains: []string{unauthorizedMsg, wrongPeriodMsg},
		},
		{
			name:        "neither",
			stderr:      "Error:\n  Unexpected ballot\n",
			fatal:       true,
			contains:    []string{"Something went wrong when calling octez-client"},
			notContains: []string{unauthorizedMsg, wrongPeriodMsg},
		},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			client := &fakeClient{ballotResult: failed(c.stderr)}
			ctrl, out := newTestController(t, "yay\n", client, activeServices())
			ctrl.cfg.AmendmentPhase = "promotion"
			ctrl.cfg.ProposalHashes = []string{parisHash}

			err := ctrl.ProcessVotingPeriod(context.Background())
			if c.fatal {
				var cmdErr *octez.CommandError
				require.True(t, errors.As(err, &cmdErr))
				assert.Contains(t, cmdErr.Stderr, "Unexpected ballot")
			} else {
				require.NoError(t, err)
			}

			for _, s := range c.contains {
				assert.Contains(t, out.String(), s)
			}
			for _, s := range c.notContains {
				assert.NotContains(t, out.String(), s)
			}
			assert.Len(t, client.ballots, 1)
		})
	}
}

func TestProcessVotingPeriod_NoProposal(t *testing.T) {
	t.Parallel()

	c, _ := newTestController(t, "", &fakeClient{}, activeServices())
	require.ErrorIs(t, c.ProcessVotingPeriod(context.Background()), errNoCurrentProposal)
}
