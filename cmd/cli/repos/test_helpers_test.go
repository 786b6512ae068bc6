package repos_test

import (
	"bytes"
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/twangodev/gemote/cmd/cli/repos"
	repoerrors "github.com/twangodev/gemote/internal/repos/errors"
	"github.com/twangodev/gemote/internal/repos/shared"
)

const (
	testRepositoryRootConstant     = "/work/project"
	testNestedRepositoryConstant   = "/work/project/libs/core"
	testConfigurationPathConstant  = "/work/project/.gemote"
	testOriginURLConstant          = "https://example.com/project.git"
	testUpstreamURLConstant        = "https://example.com/upstream.git"
	testCoreURLConstant            = "https://example.com/core.git"
	testPushURLConstant            = "git@example.com:project.git"
	testMutationFailureMessage     = "remote rejected"
	testUnknownRepositoryOperation = "resolve repository root"
	testReadRemotesOperation       = "read remotes"
)

var errTestRepositoryNotFound = errors.New("not a git repository")

// fakeRepositories keeps remote configuration for a set of repositories in memory.
type fakeRepositories struct {
	mutex        sync.Mutex
	repositories map[string]map[string]shared.RemoteState
	failures     map[string]error
	mutations    []string
}

func newFakeRepositories(repositoryPaths ...string) *fakeRepositories {
	repositories := &fakeRepositories{
		repositories: map[string]map[string]shared.RemoteState{},
		failures:     map[string]error{},
	}
	for _, repositoryPath := range repositoryPaths {
		repositories.repositories[repositoryPath] = map[string]shared.RemoteState{}
	}
	return repositories
}

func (repositories *fakeRepositories) addRemote(repositoryPath string, name string, fetchURL string, pushURL string) {
	state := shared.RemoteState{Name: name, FetchURL: fetchURL, PushURL: fetchURL}
	if len(pushURL) > 0 {
		state.PushURL = pushURL
		state.PushURLConfigured = true
	}
	repositories.repositories[repositoryPath][name] = state
}

func (repositories *fakeRepositories) remotes(repositoryPath string) []shared.RemoteState {
	repositories.mutex.Lock()
	defer repositories.mutex.Unlock()

	states := []shared.RemoteState{}
	for _, state := range repositories.repositories[repositoryPath] {
		states = append(states, state)
	}
	sort.Slice(states, func(left int, right int) bool { return states[left].Name < states[right].Name })
	return states
}

func (repositories *fakeRepositories) ResolveRepositoryRoot(_ context.Context, path string) (string, error) {
	repositories.mutex.Lock()
	defer repositories.mutex.Unlock()

	for candidate := path; len(candidate) > 0; candidate = parentDirectory(candidate) {
		if _, exists := repositories.repositories[candidate]; exists {
			return candidate, nil
		}
	}
	return "", repoerrors.RepoAccessError{Repository: path, Operation: testUnknownRepositoryOperation, Cause: errTestRepositoryNotFound}
}

func (repositories *fakeRepositories) ReadRemotes(_ context.Context, repositoryPath string) ([]shared.RemoteState, error) {
	repositories.mutex.Lock()
	_, exists := repositories.repositories[repositoryPath]
	repositories.mutex.Unlock()
	if !exists {
		return nil, repoerrors.RepoAccessError{Repository: repositoryPath, Operation: testReadRemotesOperation, Cause: errTestRepositoryNotFound}
	}
	return repositories.remotes(repositoryPath), nil
}

func (repositories *fakeRepositories) AddRemote(_ context.Context, repositoryPath string, remoteName string, fetchURL string) error {
	return repositories.mutate("add", repositoryPath, remoteName, func(remotes map[string]shared.RemoteState) {
		remotes[remoteName] = shared.RemoteState{Name: remoteName, FetchURL: fetchURL, PushURL: fetchURL}
	})
}

func (repositories *fakeRepositories) SetFetchURL(_ context.Context, repositoryPath string, remoteName string, fetchURL string) error {
	return repositories.mutate("set-url", repositoryPath, remoteName, func(remotes map[string]shared.RemoteState) {
		state := remotes[remoteName]
		state.FetchURL = fetchURL
		if !state.PushURLConfigured {
			state.PushURL = fetchURL
		}
		remotes[remoteName] = state
	})
}

func (repositories *fakeRepositories) SetPushURL(_ context.Context, repositoryPath string, remoteName string, pushURL string) error {
	return repositories.mutate("set-push-url", repositoryPath, remoteName, func(remotes map[string]shared.RemoteState) {
		state := remotes[remoteName]
		state.PushURL = pushURL
		state.PushURLConfigured = len(pushURL) > 0
		if !state.PushURLConfigured {
			state.PushURL = state.FetchURL
		}
		remotes[remoteName] = state
	})
}

func (repositories *fakeRepositories) RemoveRemote(_ context.Context, repositoryPath string, remoteName string) error {
	return repositories.mutate("remove", repositoryPath, remoteName, func(remotes map[string]shared.RemoteState) {
		delete(remotes, remoteName)
	})
}

func (repositories *fakeRepositories) mutate(kind string, repositoryPath string, remoteName string, apply func(map[string]shared.RemoteState)) error {
	repositories.mutex.Lock()
	defer repositories.mutex.Unlock()

	key := kind + " " + remoteName
	repositories.mutations = append(repositories.mutations, repositoryPath+": "+key)
	if failure, exists := repositories.failures[key]; exists {
		return failure
	}
	apply(repositories.repositories[repositoryPath])
	return nil
}

func parentDirectory(path string) string {
	index := strings.LastIndex(path, "/")
	if index <= 0 {
		return ""
	}
	return path[:index]
}

// newRepositoryFileSystem lays out the root repository and the nested repository markers.
func newRepositoryFileSystem(testInstance *testing.T, nested bool) afero.Fs {
	testInstance.Helper()

	fileSystem := afero.NewMemMapFs()
	require.NoError(testInstance, fileSystem.MkdirAll(testRepositoryRootConstant+"/.git", 0o755))
	if nested {
		require.NoError(testInstance, fileSystem.MkdirAll(testNestedRepositoryConstant+"/.git", 0o755))
	}
	return fileSystem
}

func writeConfiguration(testInstance *testing.T, fileSystem afero.Fs, content string) {
	testInstance.Helper()
	require.NoError(testInstance, afero.WriteFile(fileSystem, testConfigurationPathConstant, []byte(content), 0o644))
}

func collaborators(fileSystem afero.Fs, repositories *fakeRepositories) repos.Collaborators {
	return repos.Collaborators{
		RemoteManager: repositories,
		Locator:       repositories,
		FileSystem:    fileSystem,
	}
}

func globalOptions() repos.GlobalOptions {
	return repos.GlobalOptions{RepositoryPath: testRepositoryRootConstant, RunIdentifier: "test-run"}
}

func nopLoggerProvider() *zap.Logger {
	return zap.NewNop()
}

type commandOutput struct {
	standardOutput string
	standardError  string
}

func executeCommand(testInstance *testing.T, command *cobra.Command, arguments []string) (commandOutput, error) {
	testInstance.Helper()

	standardOutput := &bytes.Buffer{}
	standardError := &bytes.Buffer{}
	command.SetContext(context.Background())
	command.SetOut(standardOutput)
	command.SetErr(standardError)
	command.SetArgs(arguments)
	command.SilenceUsage = true
	command.SilenceErrors = true

	executionError := command.Execute()
	return commandOutput{standardOutput: standardOutput.String(), standardError: standardError.String()}, executionError
}
