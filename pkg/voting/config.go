package voting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/zdunecki/tezosvote/pkg/cli"
	"github.com/zdunecki/tezosvote/pkg/octez"
	"github.com/zdunecki/tezosvote/pkg/systemd"
	"github.com/zdunecki/tezosvote/pkg/utils"
)

const (
	// DefaultBakerAlias is the alias the voter key is imported under.
	DefaultBakerAlias = "baker"
	// DefaultDataRoot is the parent of the per-network client directories.
	DefaultDataRoot = "/var/lib/tezos"

	defaultPollInterval = time.Second
)

var (
	ErrVotingPeriodUnavailable = fmt.Errorf("%w: couldn't get the voting period info", cli.ErrCancelled)
	ErrNoLedger                = errors.New("no connected ledger devices found")
)

// Config is the state collected during one wizard run.
// Fields are filled as the corresponding steps are answered or detected.
type Config struct {
	Network            string
	ClientDataDir      string
	NodeRPCEndpoint    string
	BakerAlias         string
	BakerKeyValue      string
	IsLocalBakingSetup bool
	UsesLedger         bool
	KeyImportMode      string

	// AmendmentPhase is the raw period name reported by the client.
	AmendmentPhase  string
	Period          octez.Period
	ProposalHashes  []string
	ChosenHash      string
	NewProposalHash string
	BallotOutcome   string
}

// Client is the subset of the octez client used by the controllers.
type Client interface {
	VotingStatus(ctx context.Context) (octez.VotingStatus, error)
	SubmitProposals(ctx context.Context, alias, hash string) (utils.Result, error)
	SubmitBallot(ctx context.Context, alias, hash, outcome string) (utils.Result, error)
	ListConnectedLedgers(ctx context.Context) (string, error)
	ShowAddress(ctx context.Context, alias string) (octez.KeyInfo, error)
	ImportSecretKey(ctx context.Context, alias, uri string) error
	UsesLedger(ctx context.Context, alias string) (bool, error)
}

// ServiceManager is the subset of systemd.Manager used by the controllers.
type ServiceManager interface {
	IsActive(ctx context.Context, unit string) (bool, error)
	Restart(ctx context.Context, unit string) error
	BakingEnvironment(network string) (systemd.BakingEnvironment, error)
}

// Options wires the controller to its collaborators.
type Options struct {
	// NewClient returns a client bound to a data directory and node endpoint.
	NewClient func(dataDir, endpoint string) Client
	Services  ServiceManager
	// MakeDir creates a client data directory owned by the tezos user.
	MakeDir func(ctx context.Context, dir string) error
	// ReadClientConfig looks up a field of the client config file, see octez.SearchClientConfig.
	ReadClientConfig func(dataDir, field, def string) (string, error)
	// Probe checks node reachability for the endpoint step.
	Probe        cli.Probe
	DataRoot     string
	PollInterval time.Duration
	Logger       hclog.Logger
}

// DefaultOptions returns options running the real client and systemctl.
func DefaultOptions(logger hclog.Logger) Options {
	runner := octez.NewDefaultRunner(logger)
	return Options{
		NewClient: func(dataDir, endpoint string) Client {
			return octez.NewClient(runner, dataDir, endpoint, logger)
		},
		Services: systemd.NewManager(runner.AsUser(""), "", logger),
		MakeDir: func(ctx context.Context, dir string) error {
			res, err := runner.Output(ctx, "mkdir", "-p", dir)
			if err != nil {
				return err
			}
			if !res.Success() {
				return fmt.Errorf("failed to create %s: %s", dir, res.StderrString())
			}
			return nil
		},
		ReadClientConfig: octez.SearchClientConfig,
		Probe:            utils.URLIsReachable,
		DataRoot:         DefaultDataRoot,
		PollInterval:     defaultPollInterval,
		Logger:           logger,
	}
}

func (o *Options) setDefaults() {
	if o.Logger == nil {
		o.Logger = hclog.NewNullLogger()
	}
	if o.Probe == nil {
		o.Probe = utils.URLIsReachable
	}
	if o.ReadClientConfig == nil {
		o.ReadClientConfig = octez.SearchClientConfig
	}
	if o.DataRoot == "" {
		o.DataRoot = DefaultDataRoot
	}
	if o.PollInterval <= 0 {
		o.PollInterval = defaultPollInterval
	}
}
