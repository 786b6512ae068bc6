package repos

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/twangodev/gemote/internal/reconcile"
	"github.com/twangodev/gemote/internal/repos/remotes"
	"github.com/twangodev/gemote/internal/repos/shared"
	"github.com/twangodev/gemote/internal/ui"
	flagutils "github.com/twangodev/gemote/internal/utils/flags"
)

const (
	syncUseConstant                     = "sync"
	syncShortDescriptionConstant        = "Sync local remotes to match the .gemote config"
	syncLongDescriptionConstant         = "sync adds, updates, and (when extra_remotes = \"remove\") deletes local remotes so the repository matches its .gemote file. With --recursive, nested repositories declared under submodules are reconciled too."
	outputFlagNameConstant              = "output"
	outputFlagShorthandConstant         = "o"
	outputFlagUsageConstant             = "Report format."
	syncIncompleteErrorTemplateConstant = "sync incomplete: %d repository(ies) could not be read, %d action(s) failed"
	syncStartedLogMessageConstant       = "Sync started"
	syncFinishedLogMessageConstant      = "Sync finished"
	dryRunLogFieldConstant              = "dry_run"
	recursiveLogFieldConstant           = "recursive"
	plannedActionsLogFieldConstant      = "planned_actions"
	failedActionsLogFieldConstant       = "failed_actions"
	failedRepositoriesLogFieldConstant  = "failed_repositories"
)

var outputFormatChoices = []string{string(ui.OutputFormatText), string(ui.OutputFormatJSON), string(ui.OutputFormatYAML)}

// SyncCommandBuilder assembles the sync command.
type SyncCommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConsoleLoggerProvider LoggerProvider
	GlobalOptionsProvider GlobalOptionsProvider
	ConfigurationProvider func() SyncConfiguration
	Collaborators         Collaborators
}

// Build constructs the sync command.
func (builder *SyncCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   syncUseConstant,
		Short: syncShortDescriptionConstant,
		Long:  syncLongDescriptionConstant,
		Args:  flagutils.UsageArguments(cobra.NoArgs),
		RunE:  builder.run,
	}

	flagutils.BindExecutionFlags(command, flagutils.ExecutionDefaults{}, flagutils.SyncFlagDefinitions())
	command.Flags().StringP(
		outputFlagNameConstant,
		outputFlagShorthandConstant,
		"",
		flagutils.FormatChoiceUsage(string(ui.OutputFormatText), outputFormatChoices, outputFlagUsageConstant),
	)

	return command, nil
}

func (builder *SyncCommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration := builder.resolveConfiguration()
	executionFlags := flagutils.ResolveExecutionFlags(command)

	dryRun := configuration.DryRun
	if executionFlags.DryRunSet {
		dryRun = executionFlags.DryRun
	}

	recursive := configuration.Recursive
	if executionFlags.RecursiveSet {
		recursive = executionFlags.Recursive
	}

	outputFormat, formatError := resolveOutputFormat(command, configuration)
	if formatError != nil {
		return formatError
	}

	options := resolveGlobalOptions(builder.GlobalOptionsProvider)
	logger := resolveLogger(builder.LoggerProvider)
	services, servicesError := resolveServices(builder.Collaborators, logger, resolveConsoleLogger(builder.ConsoleLoggerProvider), options.GitTimeout)
	if servicesError != nil {
		return servicesError
	}

	executionContext := command.Context()
	resolvedTarget, targetError := resolveTarget(executionContext, services.locator, options)
	if targetError != nil {
		return targetError
	}
	logger = commandLogger(logger, options, resolvedTarget)

	declaration, loadError := services.store.Load(resolvedTarget.configuration)
	if loadError != nil {
		return loadError
	}

	reconciler, reconcilerError := reconcile.NewReconciler(reconcile.Dependencies{
		Reader:     services.remotes,
		Discoverer: services.discoverer,
		Logger:     logger,
	})
	if reconcilerError != nil {
		return reconcilerError
	}

	logger.Debug(syncStartedLogMessageConstant, zap.Bool(dryRunLogFieldConstant, dryRun), zap.Bool(recursiveLogFieldConstant, recursive))

	report, reconcileError := reconciler.Reconcile(executionContext, resolvedTarget.repository, declaration, reconcile.Options{
		Recursive:   recursive,
		MaxDepth:    configuration.MaxDepth,
		Concurrency: configuration.Concurrency,
	})
	if reconcileError != nil {
		return reconcileError
	}

	mode := remotes.ModeApply
	if dryRun {
		mode = remotes.ModeDryRun
	}

	var result remotes.ApplyResult
	if outputFormat == ui.OutputFormatText {
		printer := ui.NewReportPrinter(command.OutOrStdout(), command.ErrOrStderr())
		printer.PrintPlan(report)

		applier := remotes.NewApplier(remotes.Dependencies{
			Mutator:  services.remotes,
			Reporter: shared.NewWriterReporter(command.OutOrStdout()),
			Logger:   logger,
		})
		appliedResult, applyError := applier.Apply(executionContext, report, mode)
		if applyError != nil {
			return applyError
		}
		result = appliedResult
		printer.PrintSummary(report, result)
	} else {
		applier := remotes.NewApplier(remotes.Dependencies{Mutator: services.remotes, Logger: logger})
		appliedResult, applyError := applier.Apply(executionContext, report, mode)
		if applyError != nil {
			return applyError
		}
		result = appliedResult

		encoder, encoderError := ui.NewReportEncoder(outputFormat)
		if encoderError != nil {
			return encoderError
		}
		if encodeError := encoder.Encode(command.OutOrStdout(), report, result); encodeError != nil {
			return encodeError
		}
	}

	failedRepositories := len(report.FailedNodes())
	failedActions := len(result.Errors())
	logger.Debug(
		syncFinishedLogMessageConstant,
		zap.Int(plannedActionsLogFieldConstant, report.ActionCount()),
		zap.Int(failedActionsLogFieldConstant, failedActions),
		zap.Int(failedRepositoriesLogFieldConstant, failedRepositories),
	)

	if failedRepositories > 0 || failedActions > 0 {
		return fmt.Errorf(syncIncompleteErrorTemplateConstant, failedRepositories, failedActions)
	}
	return nil
}

func (builder *SyncCommandBuilder) resolveConfiguration() SyncConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultSyncConfiguration()
	}
	return builder.ConfigurationProvider().sanitize()
}

// resolveOutputFormat prefers an explicit --output value over the configured one. Only a bad flag
// value is a usage error.
func resolveOutputFormat(command *cobra.Command, configuration SyncConfiguration) (ui.OutputFormat, error) {
	outputFlag := command.Flags().Lookup(outputFlagNameConstant)
	if outputFlag != nil && outputFlag.Changed {
		choice, choiceError := flagutils.ParseChoice(outputFlagNameConstant, outputFlag.Value.String(), string(ui.OutputFormatText), outputFormatChoices)
		if choiceError != nil {
			return "", flagutils.NewUsageError(choiceError)
		}
		return ui.ParseOutputFormat(choice)
	}
	return ui.ParseOutputFormat(configuration.Output)
}
