package voting

import (
	"context"

	"github.com/zdunecki/tezosvote/pkg/cli"
	"github.com/zdunecki/tezosvote/pkg/networks"
	"github.com/zdunecki/tezosvote/pkg/utils"
)

// Step IDs.
const (
	StepChosenHash      = "chosen_hash"
	StepNewProposalHash = "new_proposal_hash"
	StepBallotOutcome   = "ballot_outcome"
	StepNodeRPCEndpoint = "node_rpc_endpoint"
	StepKeyImportMode   = "key_import_mode"
	StepLedgerURL       = "ledger_url"
	StepLedgerCurve     = "ledger_curve"
	StepDerivationPath  = "derivation_path"
	StepSecretKey       = "secret_key"
	StepSignerURI       = "signer_uri"
	StepRemoteAddress   = "remote_address"
)

// NewProposalOption is the extra proposal-period choice that asks for a hash not yet on chain.
const NewProposalOption = "Specify new proposal hash"

// NodeHeaderPath is probed to check that an RPC endpoint serves the chain head.
const NodeHeaderPath = "chains/main/blocks/head/header"

var ballotOutcomes = []cli.Option{
	{Value: "yay", Description: "Vote for accepting the proposal"},
	{Value: "nay", Description: "Vote for rejecting the proposal"},
	{Value: "pass", Description: "Submit a vote not influencing the result but contributing to quorum"},
}

// json imports are not offered: the wizard has no way to activate faucet accounts.
var keyImportModes = []cli.Option{
	{Value: "ledger", Description: "From a ledger"},
	{Value: "secret-key", Description: "Either the unencrypted or password-encrypted secret key for your address"},
	{Value: "remote", Description: "Remote key governed by a signer running on a different machine"},
}

var ledgerCurves = cli.PlainOptions("ed25519", "secp256k1", "P-256", "bip25519")

func proposalHashStep(hashes []string) cli.Step {
	opts := cli.PlainOptions(append(append([]string{}, hashes...), NewProposalOption)...)
	return cli.Step{
		ID: StepChosenHash,
		Prompt: "Select a proposal hash.\n" +
			"You can choose one of the suggested hashes or provide your own:",
		Help: "You can submit one proposal at a time.\n" +
			"'" + NewProposalOption + "' will ask a protocol hash from you.",
		Options:   opts,
		Validator: cli.Chain(cli.RequiredField, cli.EnumRange(opts)),
	}
}

var newProposalHashStep = cli.Step{
	ID:        StepNewProposalHash,
	Prompt:    "Provide the hash for your newly submitted proposal.",
	Help:      "The format is 'P[123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz]{50}'",
	Validator: cli.Chain(cli.RequiredField, cli.ProtocolHash),
}

var ballotOutcomeStep = cli.Step{
	ID:     StepBallotOutcome,
	Prompt: "Choose the outcome for your ballot.",
	Help: "'yay' is for supporting the proposal, 'nay' is for rejecting the proposal,\n" +
		"'pass' is used to not influence a vote but still contribute to reaching a quorum.",
	Options:   ballotOutcomes,
	Validator: cli.Chain(cli.RequiredField, cli.EnumRange(ballotOutcomes)),
}

// endpointStep offers the reachable public nodes of network, if any, next to a free-form URL.
func endpointStep(ctx context.Context, network, def string, probe cli.Probe) cli.Step {
	var opts []cli.Option
	for _, n := range networks.PublicNodes(network) {
		if probe(ctx, utils.MkFullURL(n.URL, NodeHeaderPath)) {
			opts = append(opts, cli.Option{Value: n.URL, Description: n.Provider})
		}
	}

	prompt := "Provide the node's RPC address."
	if len(opts) > 0 {
		prompt = "Choose one of the public nodes or provide the node's RPC address."
		if def == "" {
			def = "1"
		}
	}

	return cli.Step{
		ID:     StepNodeRPCEndpoint,
		Prompt: prompt,
		Help: "The node's RPC address will be used by octez-client to vote. If you have baking set up\n" +
			"through systemd services, the address is usually 'http://localhost:8732' by default.",
		Default: def,
		Options: opts,
		Validator: cli.Chain(
			cli.RequiredField,
			cli.AnyOf(cli.EnumRange(opts), cli.ReachableURLWithProbe(ctx, NodeHeaderPath, probe)),
		),
	}
}

var keyImportModeStep = cli.Step{
	ID:     StepKeyImportMode,
	Prompt: "How do you want to import the voter key?",
	Help: "Tezos Voting Wizard will use the 'baker' alias for the key\n" +
		"that will be used for voting. You will only need to import the key\n" +
		"once unless you'll want to change the key.",
	Options:   keyImportModes,
	Validator: cli.EnumRange(keyImportModes),
}

func ledgerURLStep(urls []string) cli.Step {
	opts := cli.PlainOptions(urls...)
	return cli.Step{
		ID:        StepLedgerURL,
		Prompt:    "Choose a ledger to get the new voter key from:",
		Help:      "Every connected ledger device is identified by a 'ledger://' URL made of four words.",
		Default:   "1",
		Options:   opts,
		Validator: cli.Chain(cli.RequiredField, cli.EnumRange(opts)),
	}
}

var ledgerCurveStep = cli.Step{
	ID:        StepLedgerCurve,
	Prompt:    "Choose the signing curve for your key:",
	Help:      "Use 'ed25519' unless you already know the key you want lives on another curve.",
	Default:   "ed25519",
	Options:   ledgerCurves,
	Validator: cli.Chain(cli.RequiredField, cli.EnumRange(ledgerCurves)),
}

var derivationPathStep = cli.Step{
	ID:        StepDerivationPath,
	Prompt:    "Provide the derivation path for the key stored on the ledger.",
	Help:      "The format is '[0-9]+h/[0-9]+h'",
	Default:   "0h/0h",
	Validator: cli.Chain(cli.RequiredField, cli.DerivationPath),
}

var secretKeyStep = cli.Step{
	ID:     StepSecretKey,
	Prompt: "Provide either the unencrypted or password-encrypted secret key for your address.",
	Help: "The format is 'unencrypted:edsk...' for the unencrypted key, or 'encrypted:edesk...'\n" +
		"for the encrypted key. The prefix may be omitted.",
	Validator: cli.Chain(cli.RequiredField, cli.SecretKey),
}

var signerURIStep = cli.Step{
	ID:     StepSignerURI,
	Prompt: "Provide the address of your remote signer.",
	Help: "The format is the address of your remote signer host, without a trailing slash,\n" +
		"i.e. something like http://127.0.0.1:6732. The supported schemes are\n" +
		"'tcp', 'unix', 'http' and 'https'.",
	Validator: cli.Chain(cli.RequiredField, cli.SignerURI),
}

var remoteAddressStep = cli.Step{
	ID:        StepRemoteAddress,
	Prompt:    "Provide the public key hash of the remote key.",
	Help:      "The key hash starts with 'tz1', 'tz2', 'tz3' or 'tz4', e.g. tz1V8fDHpHzN8RrZqiYCHaJM9EocsYZch5Cy",
	Validator: cli.Chain(cli.RequiredField, cli.TezosAddress),
}
