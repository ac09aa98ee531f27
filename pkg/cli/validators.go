package cli

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/zdunecki/tezosvote/pkg/utils"
)

// Validator approves an answer by returning nil, or rejects it with a human-readable reason.
type Validator func(answer string) error

var (
	protocolHashRegex   = regexp.MustCompile(`^P[1-9A-HJ-NP-Za-km-z]{50}$`)
	tezosAddressRegex   = regexp.MustCompile(`^tz[1-4][1-9A-HJ-NP-Za-km-z]{33}$`)
	signerURIRegex      = regexp.MustCompile(`^(tcp|unix|https?)://.+[^/]$`)
	secretKeyRegex      = regexp.MustCompile(`^((unencrypted|encrypted):)?(edsk|spsk|p2sk|edesk|spesk|p2esk)[1-9A-HJ-NP-Za-km-z]+$`)
	derivationPathRegex = regexp.MustCompile(`^([0-9]+h?/)*[0-9]+h?$`)
)

// Chain runs validators left to right and stops at the first rejection.
func Chain(validators ...Validator) Validator {
	return func(answer string) error {
		for _, v := range validators {
			if v == nil {
				continue
			}
			if err := v(answer); err != nil {
				return err
			}
		}
		return nil
	}
}

// AnyOf accepts the answer if either a or b accepts it.
// When both reject, the error carries both reasons.
func AnyOf(a, b Validator) Validator {
	return func(answer string) error {
		errA := a(answer)
		if errA == nil {
			return nil
		}
		errB := b(answer)
		if errB == nil {
			return nil
		}
		merr := multierror.Append(errA, errB)
		merr.ErrorFormat = func(errs []error) string {
			reasons := make([]string, 0, len(errs))
			for _, e := range errs {
				reasons = append(reasons, e.Error())
			}
			return strings.Join(reasons, "; or ")
		}
		return merr
	}
}

// RequiredField rejects empty or whitespace-only answers.
func RequiredField(answer string) error {
	if strings.TrimSpace(answer) == "" {
		return errors.New("empty input")
	}
	return nil
}

// EnumRange accepts an option literal or its 1-based display index.
func EnumRange(opts []Option) Validator {
	return func(answer string) error {
		if ResolveOption(opts, answer) != answer {
			return nil
		}
		for _, o := range opts {
			if o.Value == answer {
				return nil
			}
		}
		return fmt.Errorf("please choose one of the provided values or use their respective numbers: %s",
			strings.Join(OptionValues(opts), ", "))
	}
}

// ProtocolHash accepts governance proposal hashes: 'P' followed by 50 base58 characters.
func ProtocolHash(answer string) error {
	if !protocolHashRegex.MatchString(strings.TrimSpace(answer)) {
		return errors.New("invalid protocol hash")
	}
	return nil
}

// TezosAddress accepts implicit account addresses (tz1, tz2, tz3, tz4).
func TezosAddress(answer string) error {
	if !tezosAddressRegex.MatchString(strings.TrimSpace(answer)) {
		return errors.New("invalid Tezos address")
	}
	return nil
}

// SignerURI accepts tcp, unix, http and https signer endpoints.
func SignerURI(answer string) error {
	if !signerURIRegex.MatchString(strings.TrimSpace(answer)) {
		return errors.New("invalid signer URI. Expected one of tcp://, unix://, http://, https:// without a trailing slash")
	}
	return nil
}

// SecretKey accepts a bare secret key or one prefixed with 'unencrypted:' or 'encrypted:'.
func SecretKey(answer string) error {
	if !secretKeyRegex.MatchString(strings.TrimSpace(answer)) {
		return errors.New("invalid secret key")
	}
	return nil
}

// DerivationPath accepts paths like '0h/0h' or '0h/1h/2'.
func DerivationPath(answer string) error {
	if !derivationPathRegex.MatchString(strings.TrimSpace(answer)) {
		return errors.New("invalid derivation path. Expected something like '0h/0h'")
	}
	return nil
}

// Probe reports whether url answers.
type Probe func(ctx context.Context, url string) bool

// ReachableURL accepts a URL when a GET request to url + pathSuffix succeeds.
// It blocks for up to a few seconds per attempt.
func ReachableURL(ctx context.Context, pathSuffix string) Validator {
	return ReachableURLWithProbe(ctx, pathSuffix, utils.URLIsReachable)
}

// ReachableURLWithProbe is ReachableURL with a custom reachability check.
func ReachableURLWithProbe(ctx context.Context, pathSuffix string, probe Probe) Validator {
	return func(answer string) error {
		url := strings.TrimSpace(answer)
		if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
			return fmt.Errorf("%s is not a valid URL, expected it to start with http:// or https://", url)
		}
		if !probe(ctx, utils.MkFullURL(url, pathSuffix)) {
			return fmt.Errorf("%s is unreachable. Please ensure it's correct and the node is running", url)
		}
		return nil
	}
}
