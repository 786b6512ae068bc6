package repos

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/twangodev/gemote/internal/manifest"
	"github.com/twangodev/gemote/internal/manifestio"
	"github.com/twangodev/gemote/internal/reconcile"
	"github.com/twangodev/gemote/internal/ui"
	flagutils "github.com/twangodev/gemote/internal/utils/flags"
)

const (
	saveUseConstant                    = "save"
	saveShortDescriptionConstant       = "Save current local remotes into .gemote"
	saveLongDescriptionConstant        = "save writes the remotes configured in the repository to its .gemote file. With --recursive, remotes of nested repositories are captured under submodules."
	saveWrittenLogMessageConstant      = "Saved remote configuration"
	declaredRemotesLogFieldConstant    = "remotes"
	declaredSubmodulesLogFieldConstant = "submodules"
)

// SaveCommandBuilder assembles the save command.
type SaveCommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConsoleLoggerProvider LoggerProvider
	GlobalOptionsProvider GlobalOptionsProvider
	ConfigurationProvider func() SaveConfiguration
	Collaborators         Collaborators
}

// Build constructs the save command.
func (builder *SaveCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   saveUseConstant,
		Short: saveShortDescriptionConstant,
		Long:  saveLongDescriptionConstant,
		Args:  flagutils.UsageArguments(cobra.NoArgs),
		RunE:  builder.run,
	}

	flagutils.BindExecutionFlags(command, flagutils.ExecutionDefaults{}, flagutils.SaveFlagDefinitions())

	return command, nil
}

func (builder *SaveCommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration := builder.resolveConfiguration()
	executionFlags := flagutils.ResolveExecutionFlags(command)

	recursive := configuration.Recursive
	if executionFlags.RecursiveSet {
		recursive = executionFlags.Recursive
	}

	force := configuration.Force
	if executionFlags.ForceSet {
		force = executionFlags.Force
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

	if !force {
		exists, existsError := services.store.Exists(resolvedTarget.configuration)
		if existsError != nil {
			return existsError
		}
		if exists {
			return manifestio.FileExistsError{Path: resolvedTarget.configuration}
		}
	}

	reconciler, reconcilerError := reconcile.NewReconciler(reconcile.Dependencies{
		Reader:     services.remotes,
		Discoverer: services.discoverer,
		Logger:     logger,
	})
	if reconcilerError != nil {
		return reconcilerError
	}

	stateTree, captureError := reconciler.Capture(executionContext, resolvedTarget.repository, reconcile.Options{Recursive: recursive})
	if captureError != nil {
		return captureError
	}

	declaration := manifest.FromState(stateTree)
	if saveError := services.store.Save(resolvedTarget.configuration, declaration, force); saveError != nil {
		return saveError
	}

	logger.Debug(
		saveWrittenLogMessageConstant,
		zap.Int(declaredRemotesLogFieldConstant, len(declaration.Remotes)),
		zap.Int(declaredSubmodulesLogFieldConstant, len(declaration.Submodules)),
	)
	ui.NewReportPrinter(command.OutOrStdout(), command.ErrOrStderr()).PrintSaved(resolvedTarget.configuration)
	return nil
}

func (builder *SaveCommandBuilder) resolveConfiguration() SaveConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultSaveConfiguration()
	}
	return builder.ConfigurationProvider()
}
