// Package systemd wraps the systemctl calls and environment files of the tezos-baking services.
package systemd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/hashicorp/go-hclog"
	"github.com/joho/godotenv"

	"github.com/zdunecki/tezosvote/pkg/utils"
)

// DefaultEnvDir holds the per-service environment files.
const DefaultEnvDir = "/etc/default"

// Environment keys read from the baking service environment file.
const (
	EnvClientDataDir   = "CLIENT_DATA_DIR"
	EnvNodeRPCEndpoint = "NODE_RPC_ENDPOINT"
	EnvBakerAlias      = "BAKER_ADDRESS_ALIAS"
)

// Defaults used by the packaged baking services when the environment file omits a key.
const (
	DefaultClientDataDir   = "/var/lib/tezos/.tezos-client"
	DefaultNodeRPCEndpoint = "http://localhost:8732"
	DefaultBakerAlias      = "baker"
)

// BakingEnvironment is the configuration of a running baking service.
type BakingEnvironment struct {
	ClientDataDir   string
	NodeRPCEndpoint string
	BakerAlias      string
}

type Manager struct {
	runner utils.Runner
	envDir string
	logger hclog.Logger
}

// NewManager creates a manager. An empty envDir selects DefaultEnvDir.
func NewManager(runner utils.Runner, envDir string, logger hclog.Logger) *Manager {
	if envDir == "" {
		envDir = DefaultEnvDir
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Manager{
		runner: runner,
		envDir: envDir,
		logger: logger.Named("systemd"),
	}
}

// BakingService returns the unit name of the baking service for network.
func BakingService(network string) string {
	return fmt.Sprintf("tezos-baking-%s.service", network)
}

// IsActive reports whether unit is active.
func (m *Manager) IsActive(ctx context.Context, unit string) (bool, error) {
	res, err := m.runner.Output(ctx, "systemctl", "is-active", "--quiet", unit)
	if err != nil {
		return false, fmt.Errorf("failed to query %s: %w", unit, err)
	}
	m.logger.Debug("queried service state", "unit", unit, "active", res.Success())
	return res.Success(), nil
}

// Restart restarts unit with sudo.
func (m *Manager) Restart(ctx context.Context, unit string) error {
	res, err := m.runner.Output(ctx, "sudo", "systemctl", "restart", unit)
	if err != nil {
		return fmt.Errorf("failed to restart %s: %w", unit, err)
	}
	if !res.Success() {
		return fmt.Errorf("failed to restart %s: %s", unit, res.StderrString())
	}
	m.logger.Info("restarted service", "unit", unit)
	return nil
}

// BakingEnvironment reads the environment file of the baking service for network.
// Missing keys, and a missing file, fall back to the package defaults.
func (m *Manager) BakingEnvironment(network string) (BakingEnvironment, error) {
	env := BakingEnvironment{
		ClientDataDir:   DefaultClientDataDir,
		NodeRPCEndpoint: DefaultNodeRPCEndpoint,
		BakerAlias:      DefaultBakerAlias,
	}

	path := filepath.Join(m.envDir, "tezos-baking-"+network)
	values, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		m.logger.Warn("baking environment file not found, using defaults", "path", path)
		return env, nil
	}
	if err != nil {
		return env, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if v := values[EnvClientDataDir]; v != "" {
		env.ClientDataDir = v
	}
	if v := values[EnvNodeRPCEndpoint]; v != "" {
		env.NodeRPCEndpoint = v
	}
	if v := values[EnvBakerAlias]; v != "" {
		env.BakerAlias = v
	}
	return env, nil
}
