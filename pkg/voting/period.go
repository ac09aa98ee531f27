package voting

import (
	"context"
	"errors"
	"fmt"

	"github.com/zdunecki/tezosvote/pkg/octez"
	"github.com/zdunecki/tezosvote/pkg/utils"
)

var errNoCurrentProposal = errors.New("no current proposal found in the voting period info")

// ProcessProposalPeriod asks for a proposal hash and submits it.
// An invalid hash sends the operator back to the hash choice until a submission is
// accepted, rejected for another known reason, or the wizard is cancelled.
func (c *Controller) ProcessProposalPeriod(ctx context.Context) error {
	for {
		c.logger.Info("processing proposal period")

		chosen, err := c.ui.QueryStep(ctx, proposalHashStep(c.cfg.ProposalHashes))
		if err != nil {
			return err
		}
		c.cfg.ChosenHash = chosen

		hash := chosen
		if chosen == NewProposalOption {
			hash, err = c.ui.QueryStep(ctx, newProposalHashStep)
			if err != nil {
				return err
			}
			c.cfg.NewProposalHash = hash
		}

		c.logger.Info("submitting proposals", "hash", hash)
		c.ledgerPromptNotice()
		res, err := c.client().SubmitProposals(ctx, c.cfg.BakerAlias, hash)
		if err != nil {
			return err
		}
		if res.Success() {
			c.logger.Info("proposal submitted", "hash", hash)
			return nil
		}

		failure := octez.ClassifyProposalFailure(res.StderrString())
		c.logger.Info("proposal rejected", "hash", hash, "reason", failure.String())

		c.ui.Println()
		switch failure {
		case octez.ProposalFailureInvalid:
			c.ui.ErrorAndLog("The submitted proposal hash is invalid.")
			c.ui.Println("Check your custom submitted proposal hash and try again.")
			continue
		case octez.ProposalFailureUnauthorized:
			c.ui.ErrorAndLog("Cannot submit because of an unauthorized proposal.")
			c.ui.Println("This means you are not present in the voting listings.")
		case octez.ProposalFailureWrongPeriod:
			c.ui.ErrorAndLog("Cannot submit because the voting period is no longer 'proposal'.")
			c.ui.Println("This means the voting period has already advanced.")
		case octez.ProposalFailureTooMany:
			c.ui.ErrorAndLog("Cannot submit because of too many proposals submitted.")
			c.ui.Println("This means you have already submitted more than 20 proposals.")
		default:
			return c.unclassifiedFailure("submit proposals", res)
		}

		c.ui.Println("Please check your baker data and possibly try again.")
		return nil
	}
}

// ProcessVotingPeriod asks for a ballot outcome on the current proposal and submits it.
func (c *Controller) ProcessVotingPeriod(ctx context.Context) error {
	c.logger.Info("processing voting period")

	// Exploration and promotion periods vote on exactly one proposal.
	if len(c.cfg.ProposalHashes) == 0 {
		return errNoCurrentProposal
	}
	hash := c.cfg.ProposalHashes[0]

	c.ui.Println("The current proposal is:")
	c.ui.Println(hash)
	c.ui.Println()

	outcome, err := c.ui.QueryStep(ctx, ballotOutcomeStep)
	if err != nil {
		return err
	}
	c.cfg.BallotOutcome = outcome

	c.logger.Info("submitting ballot", "hash", hash, "outcome", outcome)
	c.ledgerPromptNotice()
	res, err := c.client().SubmitBallot(ctx, c.cfg.BakerAlias, hash, outcome)
	if err != nil {
		return err
	}
	if res.Success() {
		c.logger.Info("ballot submitted", "hash", hash, "outcome", outcome)
		return nil
	}

	// Both known errors are reported when both appear.
	failure := octez.ClassifyBallotFailure(res.StderrString())
	if failure.Unauthorized {
		c.ui.Println()
		c.ui.ErrorAndLog("Cannot vote because of an unauthorized ballot.")
		c.ui.Println("This either means you have already voted or that you are not in the voting listings in the first place.")
		c.ui.Println("Please check your baker data and possibly try again.")
	}
	if failure.WrongPeriod {
		c.ui.Println()
		c.ui.ErrorAndLog(fmt.Sprintf("Cannot vote because the voting period is no longer '%s'.", c.cfg.AmendmentPhase))
		c.ui.Println("This most likely means the voting period has already advanced to the next one.")
	}
	if !failure.Known() {
		return c.unclassifiedFailure("submit ballot", res)
	}
	return nil
}

func (c *Controller) unclassifiedFailure(command string, res utils.Result) error {
	c.logger.Error("Something went wrong when calling octez-client", "command", command, "stderr", res.StderrString())
	c.ui.Println("Something went wrong when calling octez-client. Please consult the logs.")
	return &octez.CommandError{
		Command:  command,
		Stderr:   res.StderrString(),
		ExitCode: res.ExitCode,
	}
}

func (c *Controller) ledgerPromptNotice() {
	if c.cfg.UsesLedger {
		c.ui.Success("Waiting for your response to the prompt on your Ledger Device...")
	}
}
