package octez

import (
	"regexp"
	"strings"
)

// Period is the amendment phase reported by `show voting period`.
type Period string

const (
	PeriodProposal    Period = "proposal"
	PeriodExploration Period = "exploration"
	PeriodPromotion   Period = "promotion"
	PeriodOther       Period = "other"
)

// ParsePeriod maps a raw period name to a Period; unknown names map to PeriodOther.
func ParsePeriod(name string) Period {
	switch Period(strings.ToLower(name)) {
	case PeriodProposal:
		return PeriodProposal
	case PeriodExploration:
		return PeriodExploration
	case PeriodPromotion:
		return PeriodPromotion
	default:
		return PeriodOther
	}
}

// VotingStatus is the parsed output of `show voting period`.
type VotingStatus struct {
	Period Period
	// RawPeriod is the period name as printed by the client (e.g. "cooldown").
	RawPeriod string
	Hashes    []string
}

var (
	currentPeriodRegex = regexp.MustCompile(`Current period: "(\w+)"`)
	protocolHashRegex  = regexp.MustCompile(`P[1-9A-HJ-NP-Za-km-z]{50}`)
	ledgerURLRegex     = regexp.MustCompile(`ledger://[\w\-]+`)
	knownAddressRegex  = regexp.MustCompile(`^([^:]+):\s*(tz[1-4][1-9A-HJ-NP-Za-km-z]{33})\s*(\((.*)\))?`)

	invalidProposalRegex      = regexp.MustCompile(`[Ii]nvalid proposal`)
	unauthorizedProposalRegex = regexp.MustCompile(`Unauthorized proposal`)
	notProposalPeriodRegex    = regexp.MustCompile(`Not in a proposal period`)
	tooManyProposalsRegex     = regexp.MustCompile(`Too many proposals`)

	unauthorizedBallotRegex = regexp.MustCompile(`Unauthorized ballot`)
	notVotingPeriodRegex    = regexp.MustCompile(`Not in Exploration or Promotion period`)
)

// ParseVotingStatus extracts the period name and every proposal hash mentioned in out.
// Hashes are returned in order of first appearance without duplicates.
func ParseVotingStatus(out string) (VotingStatus, error) {
	m := currentPeriodRegex.FindStringSubmatch(out)
	if m == nil {
		return VotingStatus{}, ErrNoVotingPeriod
	}

	status := VotingStatus{
		Period:    ParsePeriod(m[1]),
		RawPeriod: m[1],
	}

	seen := make(map[string]struct{})
	for _, h := range protocolHashRegex.FindAllString(out, -1) {
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		status.Hashes = append(status.Hashes, h)
	}
	return status, nil
}

// ParseLedgerURLs returns the ledger URLs found in `list connected ledgers` output.
func ParseLedgerURLs(out string) []string {
	var urls []string
	seen := make(map[string]struct{})
	for _, u := range ledgerURLRegex.FindAllString(out, -1) {
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		urls = append(urls, u)
	}
	return urls
}

// HasLedgerApp reports whether `list connected ledgers` output shows the given Tezos app
// ("Wallet" or "Baking") open on a device.
func HasLedgerApp(out, app string) bool {
	return strings.Contains(out, "Found a Tezos "+app)
}

// KnownAddress is one line of `list known addresses`.
type KnownAddress struct {
	Alias  string
	Hash   string
	Source string
}

// ParseKnownAddresses parses lines like `baker: tz1... (ledger sk known)`.
func ParseKnownAddresses(out string) []KnownAddress {
	var addrs []KnownAddress
	for _, line := range strings.Split(out, "\n") {
		m := knownAddressRegex.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		addrs = append(addrs, KnownAddress{
			Alias:  strings.TrimSpace(m[1]),
			Hash:   m[2],
			Source: m[4],
		})
	}
	return addrs
}

// ProposalFailure classifies a failed `submit proposals` call.
type ProposalFailure int

const (
	ProposalFailureUnknown ProposalFailure = iota
	ProposalFailureInvalid
	ProposalFailureUnauthorized
	ProposalFailureWrongPeriod
	ProposalFailureTooMany
)

func (f ProposalFailure) String() string {
	switch f {
	case ProposalFailureInvalid:
		return "invalid proposal"
	case ProposalFailureUnauthorized:
		return "unauthorized proposal"
	case ProposalFailureWrongPeriod:
		return "not in a proposal period"
	case ProposalFailureTooMany:
		return "too many proposals"
	default:
		return "unknown"
	}
}

// ClassifyProposalFailure matches stderr against the known proposal errors in priority order.
func ClassifyProposalFailure(stderr string) ProposalFailure {
	switch {
	case invalidProposalRegex.MatchString(stderr):
		return ProposalFailureInvalid
	case unauthorizedProposalRegex.MatchString(stderr):
		return ProposalFailureUnauthorized
	case notProposalPeriodRegex.MatchString(stderr):
		return ProposalFailureWrongPeriod
	case tooManyProposalsRegex.MatchString(stderr):
		return ProposalFailureTooMany
	default:
		return ProposalFailureUnknown
	}
}

// BallotFailure holds the independently matched ballot errors.
// Both flags may be set at once.
type BallotFailure struct {
	// Unauthorized is reported both for bakers that already voted and for bakers
	// absent from the voting listings.
	Unauthorized bool
	WrongPeriod  bool
}

// Known reports whether at least one known ballot error matched.
func (f BallotFailure) Known() bool {
	return f.Unauthorized || f.WrongPeriod
}

// ClassifyBallotFailure checks stderr for each known ballot error.
func ClassifyBallotFailure(stderr string) BallotFailure {
	return BallotFailure{
		Unauthorized: unauthorizedBallotRegex.MatchString(stderr),
		WrongPeriod:  notVotingPeriodRegex.MatchString(stderr),
	}
}
