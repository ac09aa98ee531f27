package cli

import "strconv"

// Option is an acceptable literal answer to a Step, with an optional description.
type Option struct {
	Value       string
	Description string
}

// Step is a single question asked by the Wizard.
type Step struct {
	ID        string
	Prompt    string
	Default   string
	Help      string
	Options   []Option
	Validator Validator
}

// PlainOptions turns a list of literals into options without descriptions.
func PlainOptions(values ...string) []Option {
	opts := make([]Option, 0, len(values))
	for _, v := range values {
		opts = append(opts, Option{Value: v})
	}
	return opts
}

// OptionValues returns the literal values of opts in display order.
func OptionValues(opts []Option) []string {
	values := make([]string, 0, len(opts))
	for _, o := range opts {
		values = append(values, o.Value)
	}
	return values
}

// ResolveOption maps a 1-based display index to its option literal.
// Literal matches win over index interpretation; anything else is returned unchanged.
func ResolveOption(opts []Option, answer string) string {
	for _, o := range opts {
		if o.Value == answer {
			return answer
		}
	}
	if i, err := strconv.Atoi(answer); err == nil && i >= 1 && i <= len(opts) {
		return opts[i-1].Value
	}
	return answer
}
