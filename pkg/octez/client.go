package octez

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/zdunecki/tezosvote/pkg/utils"
)

const (
	// Binary is the client executable name.
	Binary = "octez-client"
	// User owns the client data directories and runs every client command.
	User = "tezos"

	disclaimerEnv = "TEZOS_CLIENT_UNSAFE_DISABLE_DISCLAIMER"
)

var (
	ErrNoVotingPeriod = errors.New("no voting period in client output")
	ErrUnknownAlias   = errors.New("alias is not known to the client")

	showAddressHashRegex = regexp.MustCompile(`Hash:\s*(tz[1-4][1-9A-HJ-NP-Za-km-z]{33})`)
)

// CommandError is a client invocation that exited with a non-zero status.
type CommandError struct {
	Command  string
	Stderr   string
	ExitCode int
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s exited with status %d: %s", e.Command, e.ExitCode, e.Stderr)
}

// KeyInfo is the output of `show address`.
type KeyInfo struct {
	Hash string
}

// Client runs octez-client against one data directory and node endpoint.
type Client struct {
	runner   utils.Runner
	baseDir  string
	endpoint string
	logger   hclog.Logger
}

// NewDefaultRunner runs commands as the tezos user with the client disclaimer suppressed.
func NewDefaultRunner(logger hclog.Logger) *utils.CommandRunner {
	return utils.NewCommandRunner(User, map[string]string{disclaimerEnv: "YES"}, logger)
}

// NewClient creates a client. An empty endpoint omits --endpoint.
func NewClient(runner utils.Runner, baseDir, endpoint string, logger hclog.Logger) *Client {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Client{
		runner:   runner,
		baseDir:  baseDir,
		endpoint: endpoint,
		logger:   logger.Named("octez"),
	}
}

// Options returns the global options passed before every command.
func (c *Client) Options() []string {
	opts := []string{"--base-dir", c.baseDir}
	if c.endpoint != "" {
		opts = append(opts, "--endpoint", c.endpoint)
	}
	return opts
}

func (c *Client) output(ctx context.Context, global []string, args ...string) (utils.Result, error) {
	argv := append(append([]string{}, global...), args...)
	res, err := c.runner.Output(ctx, Binary, argv...)
	if err != nil {
		return res, fmt.Errorf("failed to run %s: %w", strings.Join(args, " "), err)
	}
	if !res.Success() {
		c.logger.Debug("client command failed", "command", strings.Join(args, " "), "exit_code", res.ExitCode, "stderr", res.StderrString())
	}
	return res, nil
}

func (c *Client) commandError(res utils.Result, args ...string) *CommandError {
	return &CommandError{
		Command:  strings.Join(args, " "),
		Stderr:   res.StderrString(),
		ExitCode: res.ExitCode,
	}
}

// VotingStatus runs `show voting period` and parses its output.
func (c *Client) VotingStatus(ctx context.Context) (VotingStatus, error) {
	args := []string{"show", "voting", "period"}
	res, err := c.output(ctx, c.Options(), args...)
	if err != nil {
		return VotingStatus{}, err
	}
	if !res.Success() {
		return VotingStatus{}, c.commandError(res, args...)
	}
	return ParseVotingStatus(string(res.Stdout))
}

// SubmitProposals runs `submit proposals for <alias> <hash>`.
// A failed submission is reported through the Result, not the error.
func (c *Client) SubmitProposals(ctx context.Context, alias, hash string) (utils.Result, error) {
	return c.output(ctx, c.Options(), "submit", "proposals", "for", alias, hash)
}

// SubmitBallot runs `submit ballot for <alias> <hash> <outcome>`.
func (c *Client) SubmitBallot(ctx context.Context, alias, hash, outcome string) (utils.Result, error) {
	return c.output(ctx, c.Options(), "submit", "ballot", "for", alias, hash, outcome)
}

// ListConnectedLedgers returns the raw `list connected ledgers` output.
// It only needs the data directory.
func (c *Client) ListConnectedLedgers(ctx context.Context) (string, error) {
	args := []string{"list", "connected", "ledgers"}
	res, err := c.output(ctx, []string{"--base-dir", c.baseDir}, args...)
	if err != nil {
		return "", err
	}
	return string(res.Stdout), nil
}

// ShowAddress resolves an alias to its key hash. ErrUnknownAlias is returned
// when the client has no key under alias.
func (c *Client) ShowAddress(ctx context.Context, alias string) (KeyInfo, error) {
	args := []string{"show", "address", alias}
	res, err := c.output(ctx, c.Options(), args...)
	if err != nil {
		return KeyInfo{}, err
	}

	m := showAddressHashRegex.FindStringSubmatch(string(res.Stdout))
	if !res.Success() || m == nil {
		return KeyInfo{}, fmt.Errorf("%w: %s", ErrUnknownAlias, alias)
	}

	return KeyInfo{Hash: m[1]}, nil
}

// ImportSecretKey runs `import secret key <alias> <uri> --force` with the terminal attached,
// so the client can ask for a password or a ledger confirmation.
func (c *Client) ImportSecretKey(ctx context.Context, alias, uri string) error {
	args := append(c.Options(), "import", "secret", "key", alias, uri, "--force")
	if err := c.runner.Run(ctx, Binary, args...); err != nil {
		return fmt.Errorf("failed to import key %s: %w", alias, err)
	}
	return nil
}

// UsesLedger reports whether alias is backed by a ledger device.
func (c *Client) UsesLedger(ctx context.Context, alias string) (bool, error) {
	args := []string{"list", "known", "addresses"}
	res, err := c.output(ctx, c.Options(), args...)
	if err != nil {
		return false, err
	}
	if !res.Success() {
		return false, c.commandError(res, args...)
	}
	for _, a := range ParseKnownAddresses(string(res.Stdout)) {
		if a.Alias == alias {
			return strings.Contains(a.Source, "ledger"), nil
		}
	}
	return false, nil
}
