package voting

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/zdunecki/tezosvote/pkg/cli"
	"github.com/zdunecki/tezosvote/pkg/octez"
	"github.com/zdunecki/tezosvote/pkg/systemd"
	"github.com/zdunecki/tezosvote/pkg/utils"
)

const (
	parisHash  = "PtParisBxoLz5gzMmn3d9WBQNoPSZakgnkMC2VNuQ3KXfUtUQeZ"
	quebecHash = "PsQuebecnLByd3JwTiGadoG4nGWi3HYiLXUjkibeFV8dCFeVMUg"
	bakerHash  = "tz1V8fDHpHzN8RrZqiYCHaJM9EocsYZch5Cy"

	walletOpen = "## Ledger `major-squirrel-thick-hedgehog`\nFound a Tezos Wallet 2.2.11 application running on Ledger Nano S.\n" +
		"  octez-client import secret key ledger_root \"ledger://major-squirrel-thick-hedgehog/ed25519/0h/0h\"\n"
	bakingOpen = "## Ledger `major-squirrel-thick-hedgehog`\nFound a Tezos Baking 2.4.7 application running on Ledger Nano S.\n"
)

var singleProposal = "P" + strings.Repeat("1", 50)

func failed(stderr string) utils.Result {
	return utils.Result{ExitCode: 1, Stderr: []byte(stderr)}
}

type fakeClient struct {
	dataDir  string
	endpoint string

	status    octez.VotingStatus
	statusErr error

	// proposalResults are returned in order; the last one repeats.
	proposalResults []utils.Result
	ballotResult    utils.Result

	// ledgerOutputs are returned in order; the last one repeats.
	ledgerOutputs []string
	ledgerPolls   int

	keys          map[string]octez.KeyInfo
	usesLedger    bool
	usesLedgerErr error

	proposals []string
	ballots   [][2]string
	imports   []string
}

func (f *fakeClient) VotingStatus(context.Context) (octez.VotingStatus, error) {
	return f.status, f.statusErr
}

func (f *fakeClient) SubmitProposals(_ context.Context, _ string, hash string) (utils.Result, error) {
	f.proposals = append(f.proposals, hash)
	if len(f.proposalResults) == 0 {
		return utils.Result{}, nil
	}
	res := f.proposalResults[0]
	if len(f.proposalResults) > 1 {
		f.proposalResults = f.proposalResults[1:]
	}
	return res, nil
}

func (f *fakeClient) SubmitBallot(_ context.Context, _ string, hash, outcome string) (utils.Result, error) {
	f.ballots = append(f.ballots, [2]string{hash, outcome})
	return f.ballotResult, nil
}

func (f *fakeClient) ListConnectedLedgers(context.Context) (string, error) {
	f.ledgerPolls++
	if len(f.ledgerOutputs) == 0 {
		return "", nil
	}
	out := f.ledgerOutputs[0]
	if len(f.ledgerOutputs) > 1 {
		f.ledgerOutputs = f.ledgerOutputs[1:]
	}
	return out, nil
}

func (f *fakeClient) ShowAddress(_ context.Context, alias string) (octez.KeyInfo, error) {
	if k, ok := f.keys[alias]; ok {
		return k, nil
	}
	return octez.KeyInfo{}, octez.ErrUnknownAlias
}

func (f *fakeClient) ImportSecretKey(_ context.Context, alias, uri string) error {
	f.imports = append(f.imports, uri)
	if f.keys == nil {
		f.keys = make(map[string]octez.KeyInfo)
	}
	f.keys[alias] = octez.KeyInfo{Hash: bakerHash}
	return nil
}

func (f *fakeClient) UsesLedger(context.Context, string) (bool, error) {
	return f.usesLedger, f.usesLedgerErr
}

type fakeServices struct {
	active       bool
	env          systemd.BakingEnvironment
	clientConfig map[string]string

	dirs      []string
	restarted []string
}

func (f *fakeServices) IsActive(context.Context, string) (bool, error) {
	return f.active, nil
}

func (f *fakeServices) Restart(_ context.Context, unit string) error {
	f.restarted = append(f.restarted, unit)
	return nil
}

func (f *fakeServices) BakingEnvironment(string) (systemd.BakingEnvironment, error) {
	return f.env, nil
}

func activeServices() *fakeServices {
	return &fakeServices{
		active: true,
		env: systemd.BakingEnvironment{
			ClientDataDir:   "/var/lib/tezos/.tezos-client",
			NodeRPCEndpoint: "http://localhost:8732",
			BakerAlias:      "baker",
		},
	}
}

func newTestController(t *testing.T, input string, client *fakeClient, services *fakeServices) (*Controller, *bytes.Buffer) {
	t.Helper()

	out := &bytes.Buffer{}
	ui := cli.NewWizard(cli.NewBasicReader(strings.NewReader(input), out), out, nil)
	t.Cleanup(func() { _ = ui.Close() })

	c := NewController(ui, Options{
		NewClient: func(dataDir, endpoint string) Client {
			client.dataDir = dataDir
			client.endpoint = endpoint
			return client
		},
		Services: services,
		MakeDir: func(_ context.Context, dir string) error {
			services.dirs = append(services.dirs, dir)
			return nil
		},
		ReadClientConfig: func(_, field, def string) (string, error) {
			if v, ok := services.clientConfig[field]; ok {
				return v, nil
			}
			return def, nil
		},
		Probe:        func(context.Context, string) bool { return true },
		PollInterval: time.Millisecond,
	})
	c.cfg.BakerAlias = DefaultBakerAlias
	return c, out
}
