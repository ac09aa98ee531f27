package voting

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/zdunecki/tezosvote/pkg/cli"
	"github.com/zdunecki/tezosvote/pkg/octez"
)

// importKey asks how to obtain the voter key and imports it under the baker alias.
// ledgerApp is the app that must be open on the device for ledger imports.
// A failed import asks again from the mode choice.
func (c *Controller) importKey(ctx context.Context, ledgerApp string) error {
	for {
		mode, err := c.ui.QueryStep(ctx, keyImportModeStep)
		if err != nil {
			return err
		}
		c.cfg.KeyImportMode = mode

		uri, err := c.keyURI(ctx, mode, ledgerApp)
		if errors.Is(err, ErrNoLedger) {
			c.ui.ErrorAndLog("No connected ledger devices found.")
			continue
		}
		if err != nil {
			return err
		}

		if mode == "ledger" {
			c.ui.Success("Waiting for your response to the prompt on your Ledger Device...")
		}
		c.logger.Info("importing key", "alias", c.cfg.BakerAlias, "mode", mode)
		if err := c.client().ImportSecretKey(ctx, c.cfg.BakerAlias, uri); err != nil {
			if ctx.Err() != nil {
				return cli.ErrInterrupted
			}
			c.logger.Error("key import failed", "error", err)
			c.ui.Error("Something went wrong when importing the key. Please try again.")
			continue
		}

		key, err := c.client().ShowAddress(ctx, c.cfg.BakerAlias)
		if err != nil {
			return fmt.Errorf("failed to read the imported key: %w", err)
		}
		c.cfg.BakerKeyValue = key.Hash
		c.ui.Success("The key was imported under the '%s' alias.", c.cfg.BakerAlias)
		return nil
	}
}

// keyURI asks for the key material of mode and returns the URI to import.
func (c *Controller) keyURI(ctx context.Context, mode, ledgerApp string) (string, error) {
	switch mode {
	case "ledger":
		if err := c.waitForLedgerApp(ctx, ledgerApp); err != nil {
			return "", err
		}
		out, err := c.client().ListConnectedLedgers(ctx)
		if err != nil {
			return "", err
		}
		urls := octez.ParseLedgerURLs(out)
		if len(urls) == 0 {
			return "", ErrNoLedger
		}

		ledger, err := c.ui.QueryStep(ctx, ledgerURLStep(urls))
		if err != nil {
			return "", err
		}
		curve, err := c.ui.QueryStep(ctx, ledgerCurveStep)
		if err != nil {
			return "", err
		}
		path, err := c.ui.QueryStep(ctx, derivationPathStep)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s/%s/%s", ledger, curve, path), nil

	case "secret-key":
		key, err := c.ui.QueryStep(ctx, secretKeyStep)
		if err != nil {
			return "", err
		}
		return secretKeyURI(key), nil

	case "remote":
		signer, err := c.ui.QueryStep(ctx, signerURIStep)
		if err != nil {
			return "", err
		}
		address, err := c.ui.QueryStep(ctx, remoteAddressStep)
		if err != nil {
			return "", err
		}
		return signer + "/" + address, nil

	default:
		return "", fmt.Errorf("unsupported key import mode: %s", mode)
	}
}

// secretKeyURI adds the scheme octez-client expects to a bare secret key.
func secretKeyURI(key string) string {
	key = strings.TrimSpace(key)
	if strings.HasPrefix(key, "unencrypted:") || strings.HasPrefix(key, "encrypted:") {
		return key
	}
	for _, prefix := range []string{"edesk", "spesk", "p2esk"} {
		if strings.HasPrefix(key, prefix) {
			return "encrypted:" + key
		}
	}
	return "unencrypted:" + key
}
