package dependencies

import (
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/twangodev/gemote/internal/execshell"
	"github.com/twangodev/gemote/internal/gitrepo"
	"github.com/twangodev/gemote/internal/repos/discovery"
	"github.com/twangodev/gemote/internal/repos/shared"
)

// ResolveFileSystem returns the provided filesystem or an OS-backed default.
func ResolveFileSystem(existing afero.Fs) afero.Fs {
	if existing != nil {
		return existing
	}
	return afero.NewOsFs()
}

// ResolveSubmoduleDiscoverer returns the provided discoverer or a filesystem-backed default.
func ResolveSubmoduleDiscoverer(existing shared.SubmoduleDiscoverer, fileSystem afero.Fs) shared.SubmoduleDiscoverer {
	if existing != nil {
		return existing
	}
	return discovery.NewFilesystemSubmoduleDiscoverer(ResolveFileSystem(fileSystem))
}

// ResolveGitExecutor returns the provided executor or constructs a shell-backed default.
func ResolveGitExecutor(existing shared.GitExecutor, logger *zap.Logger, options ...execshell.ShellExecutorOption) (shared.GitExecutor, error) {
	if existing != nil {
		return existing, nil
	}

	commandRunner := execshell.NewOSCommandRunner()
	shellExecutor, creationError := execshell.NewShellExecutor(logger, commandRunner, options...)
	if creationError != nil {
		return nil, creationError
	}
	return shellExecutor, nil
}

// ResolveRepositoryManager returns the provided repository manager or constructs one from the executor.
func ResolveRepositoryManager(existing *gitrepo.RepositoryManager, executor shared.GitExecutor) (*gitrepo.RepositoryManager, error) {
	if existing != nil {
		return existing, nil
	}
	return gitrepo.NewRepositoryManager(executor)
}
