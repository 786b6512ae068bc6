package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/twangodev/gemote/cmd/cli/repos"
	"github.com/twangodev/gemote/internal/manifestio"
	"github.com/twangodev/gemote/internal/utils"
	flagutils "github.com/twangodev/gemote/internal/utils/flags"
)

const (
	applicationNameConstant                 = "gemote"
	applicationShortDescriptionConstant     = "Declarative git remote management."
	applicationLongDescriptionConstant      = "gemote keeps the remotes of a git repository, and optionally of its nested repositories, in line with a .gemote file committed next to the code."
	configFileFlagNameConstant              = "config"
	configFileFlagUsageConstant             = "Path to the .gemote config file (default: <repository root>/.gemote)."
	repositoryFlagNameConstant              = "repo"
	repositoryFlagUsageConstant             = "Path to the git repository (default: the repository containing the working directory)."
	applicationConfigFlagNameConstant       = "app-config"
	applicationConfigFlagUsageConstant      = "Optional path to a gemote settings file (YAML)."
	logLevelFlagNameConstant                = "log-level"
	logLevelFlagUsageConstant               = "Override the configured log level."
	logFormatFlagNameConstant               = "log-format"
	logFormatFlagUsageConstant              = "Override the configured log format."
	commonConfigurationKeyConstant          = "common"
	commonLogLevelConfigKeyConstant         = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant        = commonConfigurationKeyConstant + ".log_format"
	commonGitTimeoutConfigKeyConstant       = commonConfigurationKeyConstant + ".git_timeout"
	commonConfigFileNameConfigKeyConstant   = commonConfigurationKeyConstant + ".config_file_name"
	syncConfigurationKeyConstant            = "sync"
	saveConfigurationKeyConstant            = "save"
	environmentPrefixConstant               = "GEMOTE"
	configurationNameConstant               = "gemote"
	configurationTypeConstant               = "yaml"
	configurationDirectoryNameConstant      = "gemote"
	defaultConfigurationSearchPathConstant  = "."
	configurationInitializedMessageConstant = "configuration initialized"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
	configurationFileFieldConstant          = "config_file"
	runIdentifierFieldConstant              = "run_id"
	commandNameFieldConstant                = "command_name"
	configurationLoadErrorTemplateConstant  = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant     = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
	developmentVersionConstant              = "dev"
	buildInfoDevelopmentVersionConstant     = "(devel)"
)

var (
	logLevelChoices  = []string{string(utils.LogLevelDebug), string(utils.LogLevelInfo), string(utils.LogLevelWarn), string(utils.LogLevelError)}
	logFormatChoices = []string{string(utils.LogFormatStructured), string(utils.LogFormatConsole)}
)

// ApplicationConfiguration describes the persisted settings for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common ApplicationCommonConfiguration `mapstructure:"common"`
	Sync   repos.SyncConfiguration        `mapstructure:"sync"`
	Save   repos.SaveConfiguration        `mapstructure:"save"`
}

// ApplicationCommonConfiguration stores settings shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel       string        `mapstructure:"log_level"`
	LogFormat      string        `mapstructure:"log_format"`
	GitTimeout     time.Duration `mapstructure:"git_timeout"`
	ConfigFileName string        `mapstructure:"config_file_name"`
}

// ApplicationOption customizes an Application.
type ApplicationOption func(application *Application)

// WithCollaborators replaces the git and filesystem services used by repository commands.
func WithCollaborators(collaborators repos.Collaborators) ApplicationOption {
	return func(application *Application) {
		application.collaborators = collaborators
	}
}

// WithOutputWriters redirects command output and error streams.
func WithOutputWriters(standardOutput io.Writer, standardError io.Writer) ApplicationOption {
	return func(application *Application) {
		application.standardOutput = standardOutput
		application.standardError = standardError
	}
}

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand                  *cobra.Command
	configurationLoader          *utils.ConfigurationLoader
	loggerFactory                *utils.LoggerFactory
	logger                       *zap.Logger
	consoleLogger                *zap.Logger
	configuration                ApplicationConfiguration
	configurationMetadata        utils.LoadedConfiguration
	applicationConfigurationPath string
	configurationFilePath        string
	repositoryPath               string
	logLevelFlagValue            string
	logFormatFlagValue           string
	runIdentifier                string
	collaborators                repos.Collaborators
	standardOutput               io.Writer
	standardError                io.Writer
	commandContextAccessor       utils.CommandContextAccessor
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication(options ...ApplicationOption) *Application {
	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		configurationSearchPaths(),
	)
	configurationLoader.SetEmbeddedConfiguration(EmbeddedDefaultConfiguration())

	application := &Application{
		configurationLoader:    configurationLoader,
		loggerFactory:          utils.NewLoggerFactory(),
		logger:                 zap.NewNop(),
		commandContextAccessor: utils.NewCommandContextAccessor(),
	}
	for _, option := range options {
		if option != nil {
			option(application)
		}
	}

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		Version:       resolveVersion(),
		Args:          flagutils.UsageArguments(cobra.NoArgs),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
	}

	cobraCommand.SetContext(context.Background())
	if application.standardOutput != nil {
		cobraCommand.SetOut(application.standardOutput)
	}
	if application.standardError != nil {
		cobraCommand.SetErr(application.standardError)
	}
	cobraCommand.CompletionOptions.DisableDefaultCmd = true
	cobraCommand.SetFlagErrorFunc(func(command *cobra.Command, flagError error) error {
		return flagutils.NewUsageError(flagError)
	})

	persistentFlags := cobraCommand.PersistentFlags()
	persistentFlags.StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	persistentFlags.StringVar(&application.repositoryPath, repositoryFlagNameConstant, "", repositoryFlagUsageConstant)
	persistentFlags.StringVar(&application.applicationConfigurationPath, applicationConfigFlagNameConstant, "", applicationConfigFlagUsageConstant)
	persistentFlags.StringVar(
		&application.logLevelFlagValue,
		logLevelFlagNameConstant,
		"",
		flagutils.FormatChoiceUsage(string(utils.LogLevelWarn), logLevelChoices, logLevelFlagUsageConstant),
	)
	persistentFlags.StringVar(
		&application.logFormatFlagValue,
		logFormatFlagNameConstant,
		"",
		flagutils.FormatChoiceUsage(string(utils.LogFormatStructured), logFormatChoices, logFormatFlagUsageConstant),
	)

	syncBuilder := repos.SyncCommandBuilder{
		LoggerProvider:        application.diagnosticLogger,
		ConsoleLoggerProvider: application.humanReadableLogger,
		GlobalOptionsProvider: application.globalOptions,
		ConfigurationProvider: func() repos.SyncConfiguration {
			return application.configuration.Sync
		},
		Collaborators: application.collaborators,
	}
	syncCommand, syncBuildError := syncBuilder.Build()
	if syncBuildError == nil {
		cobraCommand.AddCommand(syncCommand)
	}

	saveBuilder := repos.SaveCommandBuilder{
		LoggerProvider:        application.diagnosticLogger,
		ConsoleLoggerProvider: application.humanReadableLogger,
		GlobalOptionsProvider: application.globalOptions,
		ConfigurationProvider: func() repos.SaveConfiguration {
			return application.configuration.Save
		},
		Collaborators: application.collaborators,
	}
	saveCommand, saveBuildError := saveBuilder.Build()
	if saveBuildError == nil {
		cobraCommand.AddCommand(saveCommand)
	}

	completionsBuilder := CompletionsCommandBuilder{}
	completionsCommand, completionsBuildError := completionsBuilder.Build()
	if completionsBuildError == nil {
		cobraCommand.AddCommand(completionsCommand)
	}

	application.rootCommand = cobraCommand

	return application
}

// Execute runs the command hierarchy with the process arguments and flushes the logger.
func (application *Application) Execute() error {
	return application.ExecuteArguments(os.Args[1:])
}

// ExecuteArguments runs the command hierarchy with the provided arguments and flushes the logger.
func (application *Application) ExecuteArguments(arguments []string) error {
	normalizedArguments := flagutils.NormalizeToggleArguments(arguments)
	if normalizedArguments == nil {
		normalizedArguments = []string{}
	}
	application.rootCommand.SetArgs(normalizedArguments)

	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil && executionError == nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	return NewApplication().Execute()
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:       string(utils.LogLevelWarn),
		commonLogFormatConfigKeyConstant:      string(utils.LogFormatStructured),
		commonGitTimeoutConfigKeyConstant:     time.Duration(0),
		commonConfigFileNameConfigKeyConstant: manifestio.DefaultFileNameConstant,
	}
	for configurationKey, configurationValue := range repos.DefaultConfigurationValues(syncConfigurationKeyConstant, saveConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.applicationConfigurationPath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}
	application.configurationMetadata = loadedConfiguration

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		logLevel, choiceError := flagutils.ParseChoice(logLevelFlagNameConstant, application.logLevelFlagValue, string(utils.LogLevelWarn), logLevelChoices)
		if choiceError != nil {
			return flagutils.NewUsageError(choiceError)
		}
		application.configuration.Common.LogLevel = logLevel
	}

	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		logFormat, choiceError := flagutils.ParseChoice(logFormatFlagNameConstant, application.logFormatFlagValue, string(utils.LogFormatStructured), logFormatChoices)
		if choiceError != nil {
			return flagutils.NewUsageError(choiceError)
		}
		application.configuration.Common.LogFormat = logFormat
	}

	loggerOutputs, loggerCreationError := application.loggerFactory.CreateLoggerOutputs(
		utils.LogLevel(application.configuration.Common.LogLevel),
		utils.LogFormat(application.configuration.Common.LogFormat),
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	executionContext := context.Background()
	if command != nil && command.Context() != nil {
		executionContext = command.Context()
	}
	executionContext = application.commandContextAccessor.WithConfigurationFilePath(executionContext, application.configurationMetadata.ConfigFileUsed)
	executionContext = application.commandContextAccessor.WithRunIdentifier(executionContext)
	application.runIdentifier, _ = application.commandContextAccessor.RunIdentifier(executionContext)

	application.logger = loggerOutputs.DiagnosticLogger.With(zap.String(runIdentifierFieldConstant, application.runIdentifier))
	application.consoleLogger = nil
	if application.humanReadableLoggingEnabled() {
		application.consoleLogger = loggerOutputs.ConsoleLogger
	}

	commandName := ""
	if command != nil {
		commandName = command.Name()
	}
	application.logger.Debug(
		configurationInitializedMessageConstant,
		zap.String(commandNameFieldConstant, commandName),
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
	)

	if command != nil {
		command.SetContext(executionContext)
		if rootCommand := command.Root(); rootCommand != nil {
			rootCommand.SetContext(executionContext)
		}
	}

	return nil
}

func (application *Application) diagnosticLogger() *zap.Logger {
	return application.logger
}

func (application *Application) humanReadableLogger() *zap.Logger {
	return application.consoleLogger
}

func (application *Application) humanReadableLoggingEnabled() bool {
	logFormatValue := strings.TrimSpace(application.configuration.Common.LogFormat)
	return strings.EqualFold(logFormatValue, string(utils.LogFormatConsole))
}

func (application *Application) globalOptions() repos.GlobalOptions {
	return repos.GlobalOptions{
		RepositoryPath:        application.repositoryPath,
		ConfigurationPath:     application.configurationFilePath,
		ConfigurationFileName: application.configuration.Common.ConfigFileName,
		GitTimeout:            application.configuration.Common.GitTimeout,
		RunIdentifier:         application.runIdentifier,
	}
}

func (application *Application) flushLogger() error {
	if syncError := application.syncLoggerInstance(application.logger); syncError != nil {
		return syncError
	}
	return application.syncLoggerInstance(application.consoleLogger)
}

func (application *Application) syncLoggerInstance(logger *zap.Logger) error {
	if logger == nil {
		return nil
	}

	syncError := logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	case errors.Is(syncError, syscall.ENOTTY):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	rootCommand := command.Root()
	if rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet == nil {
			continue
		}

		if flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}

// configurationSearchPaths lists the working directory followed by the user configuration directory.
func configurationSearchPaths() []string {
	searchPaths := []string{defaultConfigurationSearchPathConstant}
	if userConfigurationDirectory, directoryError := os.UserConfigDir(); directoryError == nil {
		searchPaths = append(searchPaths, filepath.Join(userConfigurationDirectory, configurationDirectoryNameConstant))
	}
	return searchPaths
}

func resolveVersion() string {
	buildInfo, available := debug.ReadBuildInfo()
	if !available {
		return developmentVersionConstant
	}
	version := strings.TrimSpace(buildInfo.Main.Version)
	if len(version) == 0 || version == buildInfoDevelopmentVersionConstant {
		return developmentVersionConstant
	}
	return version
}
