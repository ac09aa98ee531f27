// Package voting drives the baking environment setup and the voting period workflows.
package voting

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/zdunecki/tezosvote/pkg/cli"
	"github.com/zdunecki/tezosvote/pkg/networks"
	"github.com/zdunecki/tezosvote/pkg/octez"
)

const welcomeText = `Welcome, this wizard will help you vote in the Tezos protocol amendment process.
Please note that to vote on mainnet, the minimum requirement is to have access
to a key that has voting rights, preferably through a connected ledger device.

All commands within the service are run under the 'tezos' user.

To access help and possible options for each question, type in 'help' or '?'.
Type in 'exit' to quit.`

// Controller runs one wizard session.
type Controller struct {
	ui     *cli.Wizard
	opts   Options
	cfg    Config
	logger hclog.Logger
}

func NewController(ui *cli.Wizard, opts Options) *Controller {
	opts.setDefaults()
	return &Controller{
		ui:     ui,
		opts:   opts,
		logger: opts.Logger.Named("voting"),
	}
}

// Config returns the state collected so far.
func (c *Controller) Config() Config {
	return c.cfg
}

// client is rebuilt on every call since the endpoint may change while setting up.
func (c *Controller) client() Client {
	return c.opts.NewClient(c.cfg.ClientDataDir, c.cfg.NodeRPCEndpoint)
}

// Run sets up the baking environment for network, then submits a proposal or a ballot
// depending on the current voting period.
func (c *Controller) Run(ctx context.Context, network string) error {
	c.ui.Println(cli.Title("Tezos Voting Wizard"))
	c.ui.Println()
	c.ui.Println(welcomeText)
	c.ui.Println()

	c.cfg.Network = networks.Resolve(network)
	c.logger.Info("selected network", "network", c.cfg.Network)

	if err := c.CollectBakingInfo(ctx); err != nil {
		return err
	}

	c.detectLedgerUse(ctx)
	if c.cfg.UsesLedger {
		if err := c.waitForLedgerApp(ctx, "Wallet"); err != nil {
			return err
		}
	}

	if err := c.fillVotingPeriodInfo(ctx); err != nil {
		return err
	}

	c.ui.PrintAndLog(fmt.Sprintf("The amendment is currently in the %s period.", c.cfg.AmendmentPhase))

	switch c.cfg.Period {
	case octez.PeriodProposal:
		c.ui.Println("Bakers can submit up to 20 protocol amendment proposals, including supporting existing ones.")
		c.ui.Println()
		if err := c.ProcessProposalPeriod(ctx); err != nil {
			return err
		}
	case octez.PeriodExploration, octez.PeriodPromotion:
		c.ui.Println("Bakers can submit one ballot regarding the current proposal, voting either 'yay', 'nay', or 'pass'.")
		c.ui.Println()
		if err := c.ProcessVotingPeriod(ctx); err != nil {
			return err
		}
	default:
		c.ui.PrintAndLog("Voting isn't possible at the moment.")
		c.ui.PrintAndLog("Exiting the Tezos Voting Wizard.")
	}

	// The baker needs the Baking app back and a restart to resume signing blocks.
	if c.cfg.IsLocalBakingSetup && c.cfg.UsesLedger {
		if err := c.restartBakingService(ctx); err != nil {
			return err
		}
	}

	c.ui.Println()
	c.ui.Println("Thank you for voting!")
	c.logger.Info("Exiting the Tezos Voting Wizard.")
	return nil
}

func (c *Controller) fillVotingPeriodInfo(ctx context.Context) error {
	c.logger.Info("getting voting period from octez-client")

	status, err := c.client().VotingStatus(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return cli.ErrInterrupted
		}
		c.logger.Error("failed to query the voting period", "error", err)
		c.ui.ErrorAndLog("Couldn't get the voting period info.")
		c.ui.Println("Please check that the network for voting has been set up correctly.")
		return fmt.Errorf("%w: %v", ErrVotingPeriodUnavailable, err)
	}

	c.cfg.AmendmentPhase = status.RawPeriod
	c.cfg.Period = status.Period
	c.cfg.ProposalHashes = status.Hashes
	c.logger.Debug("voting period info", "period", status.RawPeriod, "hashes", status.Hashes)
	return nil
}
