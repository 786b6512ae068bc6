package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	flagutils "github.com/twangodev/gemote/internal/utils/flags"
)

const (
	completionsUseConstant              = "completions <bash|zsh|fish|powershell>"
	completionsShortDescriptionConstant = "Generate shell completions"
	completionsLongDescriptionConstant  = "completions prints a completion script for the given shell to standard output."
	bashShellConstant                   = "bash"
	zshShellConstant                    = "zsh"
	fishShellConstant                   = "fish"
	powerShellConstant                  = "powershell"
	invalidShellErrorTemplateConstant   = "invalid value %q for <shell> (expected one of: %s)"
	shellListSeparatorConstant          = ", "
)

var supportedShells = []string{bashShellConstant, zshShellConstant, fishShellConstant, powerShellConstant}

// CompletionsCommandBuilder assembles the completions command.
type CompletionsCommandBuilder struct{}

// Build constructs the completions command.
func (builder *CompletionsCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:       completionsUseConstant,
		Short:     completionsShortDescriptionConstant,
		Long:      completionsLongDescriptionConstant,
		Args:      flagutils.UsageArguments(cobra.ExactArgs(1)),
		ValidArgs: supportedShells,
		RunE:      builder.run,
	}
	return command, nil
}

func (builder *CompletionsCommandBuilder) run(command *cobra.Command, arguments []string) error {
	rootCommand := command.Root()
	output := command.OutOrStdout()

	switch strings.ToLower(strings.TrimSpace(arguments[0])) {
	case bashShellConstant:
		return rootCommand.GenBashCompletionV2(output, true)
	case zshShellConstant:
		return rootCommand.GenZshCompletion(output)
	case fishShellConstant:
		return rootCommand.GenFishCompletion(output, true)
	case powerShellConstant:
		return rootCommand.GenPowerShellCompletionWithDesc(output)
	default:
		return flagutils.NewUsageError(fmt.Errorf(invalidShellErrorTemplateConstant, arguments[0], strings.Join(supportedShells, shellListSeparatorConstant)))
	}
}
