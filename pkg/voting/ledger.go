package voting

import (
	"context"
	"errors"
	"fmt"

	"github.com/sethvargo/go-retry"

	"github.com/zdunecki/tezosvote/pkg/cli"
	"github.com/zdunecki/tezosvote/pkg/octez"
	"github.com/zdunecki/tezosvote/pkg/systemd"
)

var errLedgerAppClosed = errors.New("ledger app is not open")

// waitForLedgerApp polls the connected ledgers until app ("Wallet" or "Baking") is open.
// There is no attempt limit; only ctx cancellation stops the wait.
func (c *Controller) waitForLedgerApp(ctx context.Context, app string) error {
	c.logger.Info("waiting for the ledger app to be opened", "app", app)
	c.ui.Printf("Please make sure the Tezos %s app is open on your ledger.\n", app)
	c.ui.Success("Waiting for the Tezos %s app to be opened...", app)

	client := c.client()
	err := retry.Do(ctx, retry.NewConstant(c.opts.PollInterval), func(ctx context.Context) error {
		out, err := client.ListConnectedLedgers(ctx)
		if err != nil {
			c.logger.Debug("failed to list connected ledgers", "error", err)
			return retry.RetryableError(err)
		}
		if !octez.HasLedgerApp(out, app) {
			return retry.RetryableError(errLedgerAppClosed)
		}
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return cli.ErrInterrupted
		}
		return fmt.Errorf("failed waiting for the Tezos %s app: %w", app, err)
	}
	c.logger.Info("ledger app is open", "app", app)
	return nil
}

// detectLedgerUse records whether the voter key lives on a ledger.
// A failed check is reported and treated as a key that is not on a ledger.
func (c *Controller) detectLedgerUse(ctx context.Context) {
	uses, err := c.client().UsesLedger(ctx, c.cfg.BakerAlias)
	if err != nil {
		c.logger.Warn("failed to check whether the key is a ledger key", "error", err)
		c.ui.ErrorAndLog(fmt.Sprintf("Couldn't check whether the '%s' key is stored on a ledger.", c.cfg.BakerAlias))
		c.ui.Println("The wizard will continue as if it isn't: it won't wait for the Tezos Wallet app,")
		c.ui.Println("and a local baking service won't be restarted afterwards.")
		c.ui.Println()
		uses = false
	}
	c.cfg.UsesLedger = uses
}

func (c *Controller) restartBakingService(ctx context.Context) error {
	if err := c.waitForLedgerApp(ctx, "Baking"); err != nil {
		return err
	}
	c.ui.PrintAndLog(fmt.Sprintf("Restarting local %s baking setup", c.cfg.Network))
	return c.opts.Services.Restart(ctx, systemd.BakingService(c.cfg.Network))
}
