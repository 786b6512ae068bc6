package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	defaultWorkingDirectoryLabelConstant    = "current directory"
	fallbackUnknownValueLabelConstant       = "unknown"
	flagPrefixConstant                      = "-"
)

const (
	gitRevParseSubcommandNameConstant   = "rev-parse"
	gitShowToplevelFlagConstant         = "--show-toplevel"
	gitRemoteSubcommandNameConstant     = "remote"
	gitRemoteAddSubcommandNameConstant  = "add"
	gitRemoteSetURLSubcommandConstant   = "set-url"
	gitRemoteRemoveSubcommandConstant   = "remove"
	gitPushFlagConstant                 = "--push"
	gitConfigSubcommandNameConstant     = "config"
	gitConfigGetRegexpFlagConstant      = "--get-regexp"
	gitConfigUnsetAllFlagConstant       = "--unset-all"
	gitRemoteConfigKeyPrefixConstant    = "remote."
	gitRemotePushURLKeySuffixConstant   = ".pushurl"
	gitConfigMissingKeyExitCodeConstant = 1
)

const (
	gitToplevelStartTemplateConstant                   = "Locating repository root for %s"
	gitToplevelSuccessTemplateConstant                 = "Repository root for %s is %s"
	gitToplevelFailureTemplateConstant                 = "%s is not inside a git repository (exit code %d%s)"
	gitToplevelExecutionFailureTemplateConstant        = "Unable to locate repository root for %s: %s"
	gitRemoteReadStartTemplateConstant                 = "Reading remote configuration in %s"
	gitRemoteReadSuccessTemplateConstant               = "Read remote configuration in %s"
	gitRemoteReadEmptyTemplateConstant                 = "No remotes configured in %s"
	gitRemoteReadFailureTemplateConstant               = "Failed to read remote configuration in %s (exit code %d%s)"
	gitRemoteReadExecutionFailureTemplateConstant      = "Unable to read remote configuration in %s: %s"
	gitRemoteAddStartTemplateConstant                  = "Adding remote %s (%s) in %s"
	gitRemoteAddSuccessTemplateConstant                = "Added remote %s (%s) in %s"
	gitRemoteAddFailureTemplateConstant                = "Failed to add remote %s in %s (exit code %d%s)"
	gitRemoteAddExecutionFailureTemplateConstant       = "Unable to add remote %s in %s: %s"
	gitRemoteSetURLStartTemplateConstant               = "Setting URL of remote %s in %s to %s"
	gitRemoteSetURLSuccessTemplateConstant             = "Remote %s in %s now points to %s"
	gitRemoteSetURLFailureTemplateConstant             = "Failed to set URL of remote %s in %s (exit code %d%s)"
	gitRemoteSetURLExecutionFailureTemplateConstant    = "Unable to set URL of remote %s in %s: %s"
	gitRemoteSetPushStartTemplateConstant              = "Setting push URL of remote %s in %s to %s"
	gitRemoteSetPushSuccessTemplateConstant            = "Remote %s in %s now pushes to %s"
	gitRemoteSetPushFailureTemplateConstant            = "Failed to set push URL of remote %s in %s (exit code %d%s)"
	gitRemoteSetPushExecutionFailureTemplateConstant   = "Unable to set push URL of remote %s in %s: %s"
	gitRemoteClearPushStartTemplateConstant            = "Clearing push URL of remote %s in %s"
	gitRemoteClearPushSuccessTemplateConstant          = "Cleared push URL of remote %s in %s"
	gitRemoteClearPushFailureTemplateConstant          = "Failed to clear push URL of remote %s in %s (exit code %d%s)"
	gitRemoteClearPushExecutionFailureTemplateConstant = "Unable to clear push URL of remote %s in %s: %s"
	gitRemoteRemoveStartTemplateConstant               = "Removing remote %s from %s"
	gitRemoteRemoveSuccessTemplateConstant             = "Removed remote %s from %s"
	gitRemoteRemoveFailureTemplateConstant             = "Failed to remove remote %s from %s (exit code %d%s)"
	gitRemoteRemoveExecutionFailureTemplateConstant    = "Unable to remove remote %s from %s: %s"
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if command.Name != CommandGit {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
	return formatter.describeGitMessage(command, result, failure, stage)
}

func (formatter CommandMessageFormatter) describeGitMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	if len(arguments) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	switch strings.TrimSpace(arguments[0]) {
	case gitRevParseSubcommandNameConstant:
		if containsArgument(arguments, gitShowToplevelFlagConstant) {
			return formatter.describeGitToplevelMessage(command, result, failure, stage)
		}
	case gitRemoteSubcommandNameConstant:
		return formatter.describeGitRemoteMessage(command, result, failure, stage)
	case gitConfigSubcommandNameConstant:
		return formatter.describeGitConfigMessage(command, result, failure, stage)
	}
	return formatter.buildGenericMessage(command, result, failure, stage)
}

func (formatter CommandMessageFormatter) describeGitToplevelMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	workingDirectory := formatter.describeWorkingDirectory(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitToplevelStartTemplateConstant, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(gitToplevelSuccessTemplateConstant, workingDirectory, formatter.ensureValue(result.StandardOutput))
	case messageStageFailure:
		return fmt.Sprintf(gitToplevelFailureTemplateConstant, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(gitToplevelExecutionFailureTemplateConstant, workingDirectory, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) describeGitRemoteMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	workingDirectory := formatter.describeWorkingDirectory(command)
	operands := formatter.extractOperands(arguments[1:])
	if len(operands) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	subcommand := operands[0]
	remoteName := formatter.ensureValue(formatter.argumentAtIndex(operands, 1))
	remoteURL := formatter.ensureValue(formatter.argumentAtIndex(operands, 2))
	standardErrorSuffix := formatter.formatStandardErrorSuffix(result.StandardError)
	failureDescription := formatter.describeFailure(failure)

	switch subcommand {
	case gitRemoteAddSubcommandNameConstant:
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(gitRemoteAddStartTemplateConstant, remoteName, remoteURL, workingDirectory)
		case messageStageSuccess:
			return fmt.Sprintf(gitRemoteAddSuccessTemplateConstant, remoteName, remoteURL, workingDirectory)
		case messageStageFailure:
			return fmt.Sprintf(gitRemoteAddFailureTemplateConstant, remoteName, workingDirectory, result.ExitCode, standardErrorSuffix)
		default:
			return fmt.Sprintf(gitRemoteAddExecutionFailureTemplateConstant, remoteName, workingDirectory, failureDescription)
		}
	case gitRemoteSetURLSubcommandConstant:
		if containsArgument(arguments, gitPushFlagConstant) {
			switch stage {
			case messageStageStart:
				return fmt.Sprintf(gitRemoteSetPushStartTemplateConstant, remoteName, workingDirectory, remoteURL)
			case messageStageSuccess:
				return fmt.Sprintf(gitRemoteSetPushSuccessTemplateConstant, remoteName, workingDirectory, remoteURL)
			case messageStageFailure:
				return fmt.Sprintf(gitRemoteSetPushFailureTemplateConstant, remoteName, workingDirectory, result.ExitCode, standardErrorSuffix)
			default:
				return fmt.Sprintf(gitRemoteSetPushExecutionFailureTemplateConstant, remoteName, workingDirectory, failureDescription)
			}
		}
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(gitRemoteSetURLStartTemplateConstant, remoteName, workingDirectory, remoteURL)
		case messageStageSuccess:
			return fmt.Sprintf(gitRemoteSetURLSuccessTemplateConstant, remoteName, workingDirectory, remoteURL)
		case messageStageFailure:
			return fmt.Sprintf(gitRemoteSetURLFailureTemplateConstant, remoteName, workingDirectory, result.ExitCode, standardErrorSuffix)
		default:
			return fmt.Sprintf(gitRemoteSetURLExecutionFailureTemplateConstant, remoteName, workingDirectory, failureDescription)
		}
	case gitRemoteRemoveSubcommandConstant:
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(gitRemoteRemoveStartTemplateConstant, remoteName, workingDirectory)
		case messageStageSuccess:
			return fmt.Sprintf(gitRemoteRemoveSuccessTemplateConstant, remoteName, workingDirectory)
		case messageStageFailure:
			return fmt.Sprintf(gitRemoteRemoveFailureTemplateConstant, remoteName, workingDirectory, result.ExitCode, standardErrorSuffix)
		default:
			return fmt.Sprintf(gitRemoteRemoveExecutionFailureTemplateConstant, remoteName, workingDirectory, failureDescription)
		}
	}
	return formatter.buildGenericMessage(command, result, failure, stage)
}

func (formatter CommandMessageFormatter) describeGitConfigMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	workingDirectory := formatter.describeWorkingDirectory(command)
	standardErrorSuffix := formatter.formatStandardErrorSuffix(result.StandardError)
	failureDescription := formatter.describeFailure(failure)

	if containsArgument(arguments, gitConfigGetRegexpFlagConstant) {
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(gitRemoteReadStartTemplateConstant, workingDirectory)
		case messageStageSuccess:
			return fmt.Sprintf(gitRemoteReadSuccessTemplateConstant, workingDirectory)
		case messageStageFailure:
			if result.ExitCode == gitConfigMissingKeyExitCodeConstant {
				return fmt.Sprintf(gitRemoteReadEmptyTemplateConstant, workingDirectory)
			}
			return fmt.Sprintf(gitRemoteReadFailureTemplateConstant, workingDirectory, result.ExitCode, standardErrorSuffix)
		default:
			return fmt.Sprintf(gitRemoteReadExecutionFailureTemplateConstant, workingDirectory, failureDescription)
		}
	}

	if containsArgument(arguments, gitConfigUnsetAllFlagConstant) {
		remoteName := formatter.remoteNameFromPushURLKey(formatter.argumentAtIndex(formatter.extractOperands(arguments[1:]), 0))
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(gitRemoteClearPushStartTemplateConstant, remoteName, workingDirectory)
		case messageStageSuccess:
			return fmt.Sprintf(gitRemoteClearPushSuccessTemplateConstant, remoteName, workingDirectory)
		case messageStageFailure:
			return fmt.Sprintf(gitRemoteClearPushFailureTemplateConstant, remoteName, workingDirectory, result.ExitCode, standardErrorSuffix)
		default:
			return fmt.Sprintf(gitRemoteClearPushExecutionFailureTemplateConstant, remoteName, workingDirectory, failureDescription)
		}
	}

	return formatter.buildGenericMessage(command, result, failure, stage)
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := command.String() + formatter.formatWorkingDirectorySuffix(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) formatWorkingDirectorySuffix(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func (formatter CommandMessageFormatter) argumentAtIndex(arguments []string, index int) string {
	if index >= 0 && index < len(arguments) {
		return arguments[index]
	}
	return emptyStringConstant
}

func (formatter CommandMessageFormatter) ensureValue(value string) string {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) == 0 {
		return fallbackUnknownValueLabelConstant
	}
	return trimmed
}

// extractOperands drops flags, keeping positional arguments in order.
func (formatter CommandMessageFormatter) extractOperands(arguments []string) []string {
	operands := make([]string, 0, len(arguments))
	for _, argument := range arguments {
		trimmed := strings.TrimSpace(argument)
		if len(trimmed) == 0 || strings.HasPrefix(trimmed, flagPrefixConstant) {
			continue
		}
		operands = append(operands, trimmed)
	}
	return operands
}

func (formatter CommandMessageFormatter) remoteNameFromPushURLKey(key string) string {
	trimmed := strings.TrimSpace(key)
	if !strings.HasPrefix(trimmed, gitRemoteConfigKeyPrefixConstant) || !strings.HasSuffix(trimmed, gitRemotePushURLKeySuffixConstant) {
		return formatter.ensureValue(trimmed)
	}
	return formatter.ensureValue(strings.TrimSuffix(strings.TrimPrefix(trimmed, gitRemoteConfigKeyPrefixConstant), gitRemotePushURLKeySuffixConstant))
}

func containsArgument(arguments []string, value string) bool {
	for _, argument := range arguments {
		if strings.TrimSpace(argument) == value {
			return true
		}
	}
	return false
}
