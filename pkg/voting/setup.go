package voting

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/ryanuber/columnize"

	"github.com/zdunecki/tezosvote/pkg/octez"
	"github.com/zdunecki/tezosvote/pkg/systemd"
)

// CollectBakingInfo fills the data directory, endpoint and voter key, either from a running
// baking service or by asking the operator, then loops until the operator confirms them.
func (c *Controller) CollectBakingInfo(ctx context.Context) error {
	c.logger.Info("collecting baking info")

	if err := c.checkBakingService(ctx); err != nil {
		return err
	}

	if c.cfg.IsLocalBakingSetup {
		env, err := c.opts.Services.BakingEnvironment(c.cfg.Network)
		if err != nil {
			return err
		}
		c.cfg.ClientDataDir = env.ClientDataDir
		c.cfg.NodeRPCEndpoint = env.NodeRPCEndpoint
		c.cfg.BakerAlias = env.BakerAlias
	} else {
		networkDir := filepath.Join(c.opts.DataRoot, "client-"+c.cfg.Network)

		c.logger.Info("creating the network dir", "dir", networkDir)
		if err := c.opts.MakeDir(ctx, networkDir); err != nil {
			return fmt.Errorf("failed to create the network directory: %w", err)
		}

		c.ui.Println("With no tezos-baking.service running, this wizard will use")
		c.ui.Printf("the default directory for this network: %s\n", networkDir)
		c.cfg.ClientDataDir = networkDir

		endpoint, err := c.opts.ReadClientConfig(networkDir, "endpoint", "")
		if err != nil {
			c.logger.Warn("failed to read the client config", "error", err)
		}
		c.cfg.NodeRPCEndpoint = endpoint
		if c.cfg.NodeRPCEndpoint == "" {
			if err := c.queryEndpoint(ctx, ""); err != nil {
				return err
			}
		}

		c.cfg.BakerAlias = DefaultBakerAlias
	}

	if err := c.getBakerKey(ctx); err != nil {
		return err
	}

	collected, err := c.checkDataCorrectness(ctx)
	if err != nil {
		return err
	}
	for !collected {
		if err := c.queryEndpoint(ctx, c.cfg.NodeRPCEndpoint); err != nil {
			return err
		}

		replace, err := c.ui.Confirm(ctx,
			fmt.Sprintf("Do you want to import a new key under the '%s' alias?", c.cfg.BakerAlias), false)
		if err != nil {
			return err
		}
		if replace {
			if err := c.importKey(ctx, "Wallet"); err != nil {
				return err
			}
		}

		if collected, err = c.checkDataCorrectness(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (c *Controller) checkBakingService(ctx context.Context) error {
	c.logger.Info("checking the local baking services")

	active, err := c.opts.Services.IsActive(ctx, systemd.BakingService(c.cfg.Network))
	if err != nil {
		return err
	}
	c.cfg.IsLocalBakingSetup = active

	if !active {
		c.ui.Printf("No local baking services for %s running on this machine.\n", c.cfg.Network)
		c.ui.Println("If there should be, you can run 'tezos-setup' to set it up.")
		c.ui.Println()
	}
	c.logger.Info("baking service state", "running", active)
	return nil
}

// getBakerKey resolves the voter key, importing one when the alias is unknown.
func (c *Controller) getBakerKey(ctx context.Context) error {
	key, err := c.client().ShowAddress(ctx, c.cfg.BakerAlias)
	switch {
	case err == nil:
		c.cfg.BakerKeyValue = key.Hash
		return nil
	case errors.Is(err, octez.ErrUnknownAlias):
		c.logger.Info("no secret key found", "alias", c.cfg.BakerAlias)
		return c.importKey(ctx, "Wallet")
	default:
		return err
	}
}

func (c *Controller) queryEndpoint(ctx context.Context, def string) error {
	endpoint, err := c.ui.QueryStep(ctx, endpointStep(ctx, c.cfg.Network, def, c.opts.Probe))
	if err != nil {
		return err
	}
	c.cfg.NodeRPCEndpoint = endpoint
	return nil
}

func (c *Controller) checkDataCorrectness(ctx context.Context) (bool, error) {
	c.logger.Info("querying data correctness")

	c.ui.Println("Baker data detected is as follows:")
	c.ui.Println(formatKV([]string{
		fmt.Sprintf("Data directory|%s", c.cfg.ClientDataDir),
		fmt.Sprintf("Node RPC endpoint|%s", c.cfg.NodeRPCEndpoint),
		fmt.Sprintf("Voter key|%s", c.cfg.BakerKeyValue),
	}))

	answer, err := c.ui.Confirm(ctx, "Does this look correct?", true)
	if err != nil {
		return false, err
	}
	c.logger.Info("data correctness answer", "correct", answer)
	return answer, nil
}

func formatKV(in []string) string {
	columnConf := columnize.DefaultConfig()
	columnConf.Empty = "<none>"
	columnConf.Glue = ": "

	return columnize.Format(in, columnConf)
}
