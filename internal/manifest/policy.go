package manifest

import "fmt"

const (
	extraRemotesIgnoreValueConstant    = "ignore"
	extraRemotesWarnValueConstant      = "warn"
	extraRemotesRemoveValueConstant    = "remove"
	unknownPolicyErrorTemplateConstant = "unknown extra_remotes policy %q (expected ignore, warn, or remove)"
)

// ExtraRemotesPolicy decides what happens to local remotes absent from the declaration.
type ExtraRemotesPolicy int

// Supported policies. The zero value ignores extra remotes.
const (
	ExtraRemotesIgnore ExtraRemotesPolicy = iota
	ExtraRemotesWarn
	ExtraRemotesRemove
)

// ParseExtraRemotesPolicy converts the textual form. Values are matched exactly; callers choose
// ExtraRemotesIgnore themselves when the setting is absent.
func ParseExtraRemotesPolicy(raw string) (ExtraRemotesPolicy, error) {
	switch raw {
	case extraRemotesIgnoreValueConstant:
		return ExtraRemotesIgnore, nil
	case extraRemotesWarnValueConstant:
		return ExtraRemotesWarn, nil
	case extraRemotesRemoveValueConstant:
		return ExtraRemotesRemove, nil
	default:
		return ExtraRemotesIgnore, fmt.Errorf(unknownPolicyErrorTemplateConstant, raw)
	}
}

// String returns the textual form used in configuration files.
func (policy ExtraRemotesPolicy) String() string {
	switch policy {
	case ExtraRemotesIgnore:
		return extraRemotesIgnoreValueConstant
	case ExtraRemotesWarn:
		return extraRemotesWarnValueConstant
	case ExtraRemotesRemove:
		return extraRemotesRemoveValueConstant
	default:
		return fmt.Sprintf("ExtraRemotesPolicy(%d)", int(policy))
	}
}

// IsValid reports whether the policy is one of the supported values.
func (policy ExtraRemotesPolicy) IsValid() bool {
	return policy >= ExtraRemotesIgnore && policy <= ExtraRemotesRemove
}

// MarshalText implements encoding.TextMarshaler.
func (policy ExtraRemotesPolicy) MarshalText() ([]byte, error) {
	if !policy.IsValid() {
		return nil, fmt.Errorf(unknownPolicyErrorTemplateConstant, policy.String())
	}
	return []byte(policy.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (policy *ExtraRemotesPolicy) UnmarshalText(text []byte) error {
	parsed, parseError := ParseExtraRemotesPolicy(string(text))
	if parseError != nil {
		return parseError
	}
	*policy = parsed
	return nil
}
