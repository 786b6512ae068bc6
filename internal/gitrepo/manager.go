package gitrepo

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/twangodev/gemote/internal/execshell"
	repoerrors "github.com/twangodev/gemote/internal/repos/errors"
	"github.com/twangodev/gemote/internal/repos/shared"
)

const (
	gitRevParseSubcommandConstant     = "rev-parse"
	gitShowToplevelFlagConstant       = "--show-toplevel"
	gitConfigSubcommandConstant       = "config"
	gitConfigLocalFlagConstant        = "--local"
	gitConfigGetRegexpFlagConstant    = "--get-regexp"
	gitConfigUnsetAllFlagConstant     = "--unset-all"
	gitRemoteSubcommandConstant       = "remote"
	gitRemoteAddSubcommandConstant    = "add"
	gitRemoteSetURLSubcommandConstant = "set-url"
	gitRemoteRemoveSubcommandConstant = "remove"
	gitPushFlagConstant               = "--push"
	remoteConfigPatternConstant       = `^remote\..*\.(url|pushurl)$`
	remoteConfigKeyPrefixConstant     = "remote."
	remoteURLKeySuffixConstant        = ".url"
	remotePushURLKeySuffixConstant    = ".pushurl"
	remotePushURLKeyTemplateConstant  = "remote.%s.pushurl"
	configKeyValueSeparatorConstant   = " "

	configKeyNotFoundExitCodeConstant    = 1
	configNothingToUnsetExitCodeConstant = 5

	readRemotesOperationConstant            = "read remotes"
	resolveRootOperationConstant            = "resolve repository root"
	addRemoteErrorTemplateConstant          = "add remote %s: %w"
	setFetchURLErrorTemplateConstant        = "set url of remote %s: %w"
	setPushURLErrorTemplateConstant         = "set push url of remote %s: %w"
	clearPushURLErrorTemplateConstant       = "clear push url of remote %s: %w"
	removeRemoteErrorTemplateConstant       = "remove remote %s: %w"
	gitExecutorNotConfiguredMessageConstant = "git executor not configured"
	emptyRepositoryRootMessageConstant      = "git reported an empty repository root"
)

// ErrGitExecutorNotConfigured indicates the manager was constructed without an executor.
var ErrGitExecutorNotConfigured = errors.New(gitExecutorNotConfiguredMessageConstant)

// RepositoryManager implements shared.RemoteManager and shared.RepositoryLocator on top of git.
type RepositoryManager struct {
	executor shared.GitExecutor
}

// NewRepositoryManager constructs a manager around the executor.
func NewRepositoryManager(executor shared.GitExecutor) (*RepositoryManager, error) {
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	return &RepositoryManager{executor: executor}, nil
}

// ResolveRepositoryRoot returns the top of the working tree containing path.
func (manager *RepositoryManager) ResolveRepositoryRoot(executionContext context.Context, path string) (string, error) {
	result, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitRevParseSubcommandConstant, gitShowToplevelFlagConstant},
		WorkingDirectory: path,
	})
	if executionError != nil {
		return "", repoerrors.RepoAccessError{Repository: path, Operation: resolveRootOperationConstant, Cause: executionError}
	}

	root := strings.TrimSpace(result.StandardOutput)
	if len(root) == 0 {
		return "", repoerrors.RepoAccessError{Repository: path, Operation: resolveRootOperationConstant, Cause: errors.New(emptyRepositoryRootMessageConstant)}
	}
	return root, nil
}

// ReadRemotes snapshots the locally configured remotes sorted by name.
func (manager *RepositoryManager) ReadRemotes(executionContext context.Context, repositoryPath string) ([]shared.RemoteState, error) {
	result, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitConfigSubcommandConstant, gitConfigLocalFlagConstant, gitConfigGetRegexpFlagConstant, remoteConfigPatternConstant},
		WorkingDirectory: repositoryPath,
	})
	if executionError != nil {
		if exitCodeOf(executionError) == configKeyNotFoundExitCodeConstant {
			return []shared.RemoteState{}, nil
		}
		return nil, repoerrors.RepoAccessError{Repository: repositoryPath, Operation: readRemotesOperationConstant, Cause: executionError}
	}

	return parseRemoteConfiguration(result.StandardOutput), nil
}

// AddRemote creates a remote with the fetch URL.
func (manager *RepositoryManager) AddRemote(executionContext context.Context, repositoryPath string, remoteName string, fetchURL string) error {
	if executionError := manager.runGit(executionContext, repositoryPath, gitRemoteSubcommandConstant, gitRemoteAddSubcommandConstant, remoteName, fetchURL); executionError != nil {
		return fmt.Errorf(addRemoteErrorTemplateConstant, remoteName, executionError)
	}
	return nil
}

// SetFetchURL replaces the fetch URL of an existing remote.
func (manager *RepositoryManager) SetFetchURL(executionContext context.Context, repositoryPath string, remoteName string, fetchURL string) error {
	if executionError := manager.runGit(executionContext, repositoryPath, gitRemoteSubcommandConstant, gitRemoteSetURLSubcommandConstant, remoteName, fetchURL); executionError != nil {
		return fmt.Errorf(setFetchURLErrorTemplateConstant, remoteName, executionError)
	}
	return nil
}

// SetPushURL sets the explicit push URL of a remote. An empty URL removes it.
func (manager *RepositoryManager) SetPushURL(executionContext context.Context, repositoryPath string, remoteName string, pushURL string) error {
	if len(pushURL) == 0 {
		executionError := manager.runGit(executionContext, repositoryPath, gitConfigSubcommandConstant, gitConfigLocalFlagConstant, gitConfigUnsetAllFlagConstant, fmt.Sprintf(remotePushURLKeyTemplateConstant, remoteName))
		if executionError != nil && exitCodeOf(executionError) != configNothingToUnsetExitCodeConstant {
			return fmt.Errorf(clearPushURLErrorTemplateConstant, remoteName, executionError)
		}
		return nil
	}

	if executionError := manager.runGit(executionContext, repositoryPath, gitRemoteSubcommandConstant, gitRemoteSetURLSubcommandConstant, gitPushFlagConstant, remoteName, pushURL); executionError != nil {
		return fmt.Errorf(setPushURLErrorTemplateConstant, remoteName, executionError)
	}
	return nil
}

// RemoveRemote deletes a remote.
func (manager *RepositoryManager) RemoveRemote(executionContext context.Context, repositoryPath string, remoteName string) error {
	if executionError := manager.runGit(executionContext, repositoryPath, gitRemoteSubcommandConstant, gitRemoteRemoveSubcommandConstant, remoteName); executionError != nil {
		return fmt.Errorf(removeRemoteErrorTemplateConstant, remoteName, executionError)
	}
	return nil
}

func (manager *RepositoryManager) runGit(executionContext context.Context, repositoryPath string, arguments ...string) error {
	_, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        arguments,
		WorkingDirectory: repositoryPath,
	})
	return executionError
}

// parseRemoteConfiguration folds `key value` lines of remote.<name>.url and
// remote.<name>.pushurl entries into remote states. The first value of a
// multi-valued key wins.
func parseRemoteConfiguration(output string) []shared.RemoteState {
	statesByName := map[string]*shared.RemoteState{}

	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		key, value, found := strings.Cut(line, configKeyValueSeparatorConstant)
		if !found || !strings.HasPrefix(key, remoteConfigKeyPrefixConstant) {
			continue
		}

		var remoteName string
		isPushURL := false
		switch {
		case strings.HasSuffix(key, remotePushURLKeySuffixConstant):
			remoteName = strings.TrimSuffix(strings.TrimPrefix(key, remoteConfigKeyPrefixConstant), remotePushURLKeySuffixConstant)
			isPushURL = true
		case strings.HasSuffix(key, remoteURLKeySuffixConstant):
			remoteName = strings.TrimSuffix(strings.TrimPrefix(key, remoteConfigKeyPrefixConstant), remoteURLKeySuffixConstant)
		default:
			continue
		}
		if len(remoteName) == 0 {
			continue
		}

		state, exists := statesByName[remoteName]
		if !exists {
			state = &shared.RemoteState{Name: remoteName}
			statesByName[remoteName] = state
		}
		if isPushURL {
			if !state.PushURLConfigured {
				state.PushURL = value
				state.PushURLConfigured = true
			}
			continue
		}
		if len(state.FetchURL) == 0 {
			state.FetchURL = value
		}
	}

	names := make([]string, 0, len(statesByName))
	for name := range statesByName {
		names = append(names, name)
	}
	sort.Strings(names)

	states := make([]shared.RemoteState, 0, len(names))
	for _, name := range names {
		state := *statesByName[name]
		if !state.PushURLConfigured {
			state.PushURL = state.FetchURL
		}
		states = append(states, state)
	}
	return states
}

func exitCodeOf(executionError error) int {
	var failedError execshell.CommandFailedError
	if errors.As(executionError, &failedError) {
		return failedError.Result.ExitCode
	}
	return -1
}
