package repos

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/twangodev/gemote/internal/execshell"
	"github.com/twangodev/gemote/internal/manifestio"
	"github.com/twangodev/gemote/internal/repos/dependencies"
	repoerrors "github.com/twangodev/gemote/internal/repos/errors"
	"github.com/twangodev/gemote/internal/repos/shared"
	"github.com/twangodev/gemote/internal/ui"
	pathutils "github.com/twangodev/gemote/internal/utils/path"
)

const (
	resolveRepositoryOperationConstant     = "resolve repository"
	invalidConfigurationPathReasonConstant = "invalid config path"
	runIdentifierLogFieldConstant          = "run_id"
	repositoryLogFieldConstant             = "repository"
	configurationLogFieldConstant          = "config_file"
)

var repositoryHomeDirectoryExpander = pathutils.NewHomeExpander()

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// GlobalOptions carries the root command settings shared by repository commands.
type GlobalOptions struct {
	RepositoryPath        string
	ConfigurationPath     string
	ConfigurationFileName string
	GitTimeout            time.Duration
	RunIdentifier         string
}

// GlobalOptionsProvider yields the global options of the current invocation.
type GlobalOptionsProvider func() GlobalOptions

// Collaborators lets callers replace the git and filesystem services used by repository commands.
// Unset fields are built from the git executable and the operating system filesystem.
type Collaborators struct {
	GitExecutor   shared.GitExecutor
	RemoteManager shared.RemoteManager
	Locator       shared.RepositoryLocator
	Discoverer    shared.SubmoduleDiscoverer
	FileSystem    afero.Fs
}

type commandServices struct {
	locator    shared.RepositoryLocator
	remotes    shared.RemoteManager
	discoverer shared.SubmoduleDiscoverer
	store      *manifestio.Store
}

// target is the repository and configuration file a command operates on.
type target struct {
	repository    string
	configuration string
}

func resolveServices(collaborators Collaborators, logger *zap.Logger, consoleLogger *zap.Logger, gitTimeout time.Duration) (commandServices, error) {
	fileSystem := dependencies.ResolveFileSystem(collaborators.FileSystem)
	services := commandServices{
		locator:    collaborators.Locator,
		remotes:    collaborators.RemoteManager,
		discoverer: dependencies.ResolveSubmoduleDiscoverer(collaborators.Discoverer, fileSystem),
		store:      manifestio.NewStore(fileSystem),
	}
	if services.locator != nil && services.remotes != nil {
		return services, nil
	}

	executorLogger := logger
	executorOptions := []execshell.ShellExecutorOption{execshell.WithCommandTimeout(gitTimeout)}
	if consoleLogger != nil {
		executorLogger = zap.NewNop()
		executorOptions = append(executorOptions, execshell.WithCommandEventObserver(ui.NewConsoleCommandEventLogger(consoleLogger)))
	}

	gitExecutor, executorError := dependencies.ResolveGitExecutor(collaborators.GitExecutor, executorLogger, executorOptions...)
	if executorError != nil {
		return commandServices{}, executorError
	}
	repositoryManager, managerError := dependencies.ResolveRepositoryManager(nil, gitExecutor)
	if managerError != nil {
		return commandServices{}, managerError
	}

	if services.locator == nil {
		services.locator = repositoryManager
	}
	if services.remotes == nil {
		services.remotes = repositoryManager
	}
	return services, nil
}

// resolveTarget finds the repository root containing the requested directory (the working
// directory when unset) and the configuration file path, which defaults to the file name
// inside the repository root.
func resolveTarget(executionContext context.Context, locator shared.RepositoryLocator, options GlobalOptions) (target, error) {
	requestedDirectory, directoryError := repositoryHomeDirectoryExpander.Resolve(options.RepositoryPath)
	if directoryError != nil {
		return target{}, repoerrors.RepoAccessError{Repository: options.RepositoryPath, Operation: resolveRepositoryOperationConstant, Cause: directoryError}
	}

	repositoryRoot, rootError := locator.ResolveRepositoryRoot(executionContext, requestedDirectory)
	if rootError != nil {
		return target{}, rootError
	}

	configurationPath := strings.TrimSpace(options.ConfigurationPath)
	if len(configurationPath) > 0 {
		resolvedConfiguration, configurationError := repositoryHomeDirectoryExpander.Resolve(configurationPath)
		if configurationError != nil {
			return target{}, repoerrors.ConfigError{Location: configurationPath, Reason: invalidConfigurationPathReasonConstant, Cause: configurationError}
		}
		return target{repository: repositoryRoot, configuration: resolvedConfiguration}, nil
	}

	fileName := strings.TrimSpace(options.ConfigurationFileName)
	if len(fileName) == 0 {
		fileName = manifestio.DefaultFileNameConstant
	}
	return target{repository: repositoryRoot, configuration: filepath.Join(repositoryRoot, fileName)}, nil
}

func resolveLogger(provider LoggerProvider) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	logger := provider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func resolveConsoleLogger(provider LoggerProvider) *zap.Logger {
	if provider == nil {
		return nil
	}
	return provider()
}

func resolveGlobalOptions(provider GlobalOptionsProvider) GlobalOptions {
	if provider == nil {
		return GlobalOptions{}
	}
	return provider()
}

func commandLogger(logger *zap.Logger, options GlobalOptions, resolvedTarget target) *zap.Logger {
	fields := []zap.Field{
		zap.String(repositoryLogFieldConstant, resolvedTarget.repository),
		zap.String(configurationLogFieldConstant, resolvedTarget.configuration),
	}
	if len(options.RunIdentifier) > 0 {
		fields = append(fields, zap.String(runIdentifierLogFieldConstant, options.RunIdentifier))
	}
	return logger.With(fields...)
}
