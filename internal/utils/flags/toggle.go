package flags

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/pflag"
)

const (
	toggleTrueValueConstant                = "true"
	toggleFalseValueConstant               = "false"
	toggleTypeNameConstant                 = "bool"
	toggleParseErrorTemplateConstant       = "invalid toggle value %q (expected yes/no, true/false, on/off or 1/0)"
	toggleTruePlaceholderConstant          = "<YES|no>"
	toggleFalsePlaceholderConstant         = "<yes|NO>"
	toggleUsagePlaceholderTemplateConstant = "`%s`"
	toggleUsageTemplateConstant            = "`%s` %s"
	longFlagPrefixConstant                 = "--"
	shortFlagPrefixConstant                = "-"
	flagValueSeparatorConstant             = "="
)

var toggleLiterals = map[string]bool{
	"true":  true,
	"yes":   true,
	"on":    true,
	"1":     true,
	"t":     true,
	"y":     true,
	"false": false,
	"no":    false,
	"off":   false,
	"0":     false,
	"f":     false,
	"n":     false,
}

// toggleRegistry remembers which flags accept a detached value so argument normalization can join them.
type toggleRegistry struct {
	mutex      sync.RWMutex
	names      map[string]struct{}
	shorthands map[string]struct{}
}

var registeredToggles = &toggleRegistry{
	names:      map[string]struct{}{},
	shorthands: map[string]struct{}{},
}

// AddToggleFlag registers a boolean flag accepting yes/no style values. A bare flag means true.
func AddToggleFlag(flagSet *pflag.FlagSet, target *bool, name string, shorthand string, defaultValue bool, usage string) {
	if flagSet == nil || len(name) == 0 {
		return
	}

	value := newToggleValue(defaultValue, target)
	flag := flagSet.VarPF(value, name, shorthand, usage)
	flag.NoOptDefVal = toggleTrueValueConstant
	flag.Usage = toggleUsage(usage, defaultValue)

	registeredToggles.register(name, shorthand)
}

// ParseToggle interprets a toggle literal. An empty value means true.
func ParseToggle(rawValue string) (bool, error) {
	normalized := strings.ToLower(strings.TrimSpace(rawValue))
	if len(normalized) == 0 {
		return true, nil
	}
	parsed, known := toggleLiterals[normalized]
	if !known {
		return false, fmt.Errorf(toggleParseErrorTemplateConstant, rawValue)
	}
	return parsed, nil
}

// NormalizeToggleArguments joins detached toggle values so "--flag no" parses as "--flag=no".
// Arguments after "--" are left untouched.
func NormalizeToggleArguments(arguments []string) []string {
	if len(arguments) == 0 {
		return nil
	}

	normalized := make([]string, 0, len(arguments))
	for index := 0; index < len(arguments); index++ {
		current := arguments[index]
		if current == longFlagPrefixConstant {
			normalized = append(normalized, arguments[index:]...)
			break
		}

		if registeredToggles.acceptsDetachedValue(current) && index+1 < len(arguments) && isToggleLiteral(arguments[index+1]) {
			normalized = append(normalized, current+flagValueSeparatorConstant+arguments[index+1])
			index++
			continue
		}
		normalized = append(normalized, current)
	}
	return normalized
}

func toggleUsage(description string, defaultValue bool) string {
	placeholder := toggleFalsePlaceholderConstant
	if defaultValue {
		placeholder = toggleTruePlaceholderConstant
	}
	trimmed := strings.TrimSpace(description)
	if len(trimmed) == 0 {
		return fmt.Sprintf(toggleUsagePlaceholderTemplateConstant, placeholder)
	}
	return fmt.Sprintf(toggleUsageTemplateConstant, placeholder, trimmed)
}

func isToggleLiteral(candidate string) bool {
	if strings.HasPrefix(candidate, shortFlagPrefixConstant) {
		return false
	}
	_, known := toggleLiterals[strings.ToLower(strings.TrimSpace(candidate))]
	return known
}

func (registry *toggleRegistry) register(name string, shorthand string) {
	registry.mutex.Lock()
	defer registry.mutex.Unlock()
	registry.names[name] = struct{}{}
	if len(shorthand) > 0 {
		registry.shorthands[shorthand] = struct{}{}
	}
}

// acceptsDetachedValue reports whether the argument is a bare registered toggle such as "--force" or "-f".
func (registry *toggleRegistry) acceptsDetachedValue(argument string) bool {
	if strings.Contains(argument, flagValueSeparatorConstant) {
		return false
	}

	registry.mutex.RLock()
	defer registry.mutex.RUnlock()

	if strings.HasPrefix(argument, longFlagPrefixConstant) {
		_, exists := registry.names[strings.TrimPrefix(argument, longFlagPrefixConstant)]
		return exists
	}
	if strings.HasPrefix(argument, shortFlagPrefixConstant) {
		shorthand := strings.TrimPrefix(argument, shortFlagPrefixConstant)
		if len(shorthand) != 1 {
			return false
		}
		_, exists := registry.shorthands[shorthand]
		return exists
	}
	return false
}

type toggleValue struct {
	current bool
	target  *bool
}

func newToggleValue(defaultValue bool, target *bool) *toggleValue {
	if target != nil {
		*target = defaultValue
	}
	return &toggleValue{current: defaultValue, target: target}
}

func (value *toggleValue) Set(rawValue string) error {
	parsed, parseError := ParseToggle(rawValue)
	if parseError != nil {
		return parseError
	}
	value.current = parsed
	if value.target != nil {
		*value.target = parsed
	}
	return nil
}

func (value *toggleValue) String() string {
	if value != nil && value.current {
		return toggleTrueValueConstant
	}
	return toggleFalseValueConstant
}

func (value *toggleValue) Type() string {
	return toggleTypeNameConstant
}
