// Package flags provides helpers for binding standardized execution flags to Cobra commands.
package flags

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Standard execution flag names.
const (
	DryRunFlagName         = "dry-run"
	DryRunFlagUsage        = "Show the planned remote changes without applying them."
	RecursiveFlagName      = "recursive"
	RecursiveFlagShorthand = "r"
	RecursiveFlagUsage     = "Descend into nested repositories."
	ForceFlagName          = "force"
	ForceFlagShorthand     = "f"
	ForceFlagUsage         = "Overwrite an existing configuration file."
)

// ExecutionDefaults describes default flag values shared across commands.
type ExecutionDefaults struct {
	DryRun    bool
	Recursive bool
	Force     bool
}

// ExecutionFlagDefinition captures a single flag's configuration.
type ExecutionFlagDefinition struct {
	Name      string
	Usage     string
	Shorthand string
	Enabled   bool
}

// ExecutionFlagDefinitions groups execution flag definitions.
type ExecutionFlagDefinitions struct {
	DryRun    ExecutionFlagDefinition
	Recursive ExecutionFlagDefinition
	Force     ExecutionFlagDefinition
}

// ExecutionFlags captures the resolved toggles of one invocation. The Set fields report whether the user
// passed the flag explicitly.
type ExecutionFlags struct {
	DryRun       bool
	DryRunSet    bool
	Recursive    bool
	RecursiveSet bool
	Force        bool
	ForceSet     bool
}

// SyncFlagDefinitions enables dry-run and recursive.
func SyncFlagDefinitions() ExecutionFlagDefinitions {
	return ExecutionFlagDefinitions{
		DryRun:    ExecutionFlagDefinition{Name: DryRunFlagName, Usage: DryRunFlagUsage, Enabled: true},
		Recursive: ExecutionFlagDefinition{Name: RecursiveFlagName, Shorthand: RecursiveFlagShorthand, Usage: RecursiveFlagUsage, Enabled: true},
	}
}

// SaveFlagDefinitions enables force and recursive.
func SaveFlagDefinitions() ExecutionFlagDefinitions {
	return ExecutionFlagDefinitions{
		Recursive: ExecutionFlagDefinition{Name: RecursiveFlagName, Shorthand: RecursiveFlagShorthand, Usage: "Capture nested repositories as well.", Enabled: true},
		Force:     ExecutionFlagDefinition{Name: ForceFlagName, Shorthand: ForceFlagShorthand, Usage: ForceFlagUsage, Enabled: true},
	}
}

// BindExecutionFlags attaches the enabled toggles to the command's local flag set.
func BindExecutionFlags(command *cobra.Command, defaults ExecutionDefaults, definitions ExecutionFlagDefinitions) {
	if command == nil {
		return
	}

	flagSet := command.Flags()
	bindToggle(flagSet, definitions.DryRun, defaults.DryRun)
	bindToggle(flagSet, definitions.Recursive, defaults.Recursive)
	bindToggle(flagSet, definitions.Force, defaults.Force)
}

// ResolveExecutionFlags reads the execution toggles from the command after parsing.
// Flags the command does not define resolve to false and unset.
func ResolveExecutionFlags(command *cobra.Command) ExecutionFlags {
	if command == nil {
		return ExecutionFlags{}
	}

	flagSet := command.Flags()
	resolved := ExecutionFlags{}
	resolved.DryRun, resolved.DryRunSet = lookupToggle(flagSet, DryRunFlagName)
	resolved.Recursive, resolved.RecursiveSet = lookupToggle(flagSet, RecursiveFlagName)
	resolved.Force, resolved.ForceSet = lookupToggle(flagSet, ForceFlagName)
	return resolved
}

func bindToggle(flagSet *pflag.FlagSet, definition ExecutionFlagDefinition, defaultValue bool) {
	if !definition.Enabled || len(definition.Name) == 0 {
		return
	}
	if flagSet.Lookup(definition.Name) != nil {
		return
	}
	AddToggleFlag(flagSet, nil, definition.Name, definition.Shorthand, defaultValue, definition.Usage)
}

func lookupToggle(flagSet *pflag.FlagSet, name string) (bool, bool) {
	flag := flagSet.Lookup(name)
	if flag == nil {
		return false, false
	}
	value, parseError := ParseToggle(flag.Value.String())
	if parseError != nil {
		return false, flag.Changed
	}
	return value, flag.Changed
}
