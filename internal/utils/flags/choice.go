package flags

import (
	"fmt"
	"strings"
)

const (
	choicePlaceholderPrefixConstant  = "<"
	choicePlaceholderSuffixConstant  = ">"
	choiceSeparatorConstant          = "|"
	choiceListSeparatorConstant      = ", "
	choiceUsageEmptyTemplateConstant = "`%s`"
	choiceUsageFullTemplateConstant  = "`%s` %s"
	choiceErrorTemplateConstant      = "invalid value %q for --%s (expected one of: %s)"
)

// ChoiceError reports a flag value outside the accepted set.
type ChoiceError struct {
	FlagName string
	Value    string
	Choices  []string
}

// Error describes the rejected value.
func (choiceError ChoiceError) Error() string {
	return fmt.Sprintf(choiceErrorTemplateConstant, choiceError.Value, choiceError.FlagName, strings.Join(choiceError.Choices, choiceListSeparatorConstant))
}

// ParseChoice matches the raw value case-insensitively against the choices and returns the canonical
// lowercase choice. An empty value selects the default.
func ParseChoice(flagName string, rawValue string, defaultChoice string, choices []string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(rawValue))
	if len(normalized) == 0 {
		normalized = strings.ToLower(strings.TrimSpace(defaultChoice))
	}

	canonicalChoices := canonicalizeChoices(choices)
	for _, choice := range canonicalChoices {
		if choice == normalized {
			return choice, nil
		}
	}
	return "", ChoiceError{FlagName: flagName, Value: rawValue, Choices: canonicalChoices}
}

// FormatChoiceUsage builds a usage string where the default option is capitalized inside a placeholder.
func FormatChoiceUsage(defaultChoice string, choices []string, description string) string {
	normalizedDefault := strings.ToLower(strings.TrimSpace(defaultChoice))
	canonicalChoices := canonicalizeChoices(choices)

	displayed := make([]string, 0, len(canonicalChoices))
	for _, choice := range canonicalChoices {
		if choice == normalizedDefault {
			choice = strings.ToUpper(choice)
		}
		displayed = append(displayed, choice)
	}

	placeholder := choicePlaceholderPrefixConstant + strings.Join(displayed, choiceSeparatorConstant) + choicePlaceholderSuffixConstant
	trimmedDescription := strings.TrimSpace(description)
	if len(trimmedDescription) == 0 {
		return fmt.Sprintf(choiceUsageEmptyTemplateConstant, placeholder)
	}
	return fmt.Sprintf(choiceUsageFullTemplateConstant, placeholder, trimmedDescription)
}

func canonicalizeChoices(choices []string) []string {
	canonical := make([]string, 0, len(choices))
	seen := make(map[string]struct{}, len(choices))
	for _, choice := range choices {
		normalized := strings.ToLower(strings.TrimSpace(choice))
		if len(normalized) == 0 {
			continue
		}
		if _, duplicate := seen[normalized]; duplicate {
			continue
		}
		seen[normalized] = struct{}{}
		canonical = append(canonical, normalized)
	}
	return canonical
}
