package shared

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/twangodev/gemote/internal/execshell"
)

const (
	remoteNameEmptyErrorMessage      = "remote name must not be empty"
	remoteNameLineBreakErrorMessage  = "remote name must not contain line breaks"
	addActionDescriptionTemplate     = "add remote %s (%s)"
	addWithPushDescriptionTemplate   = "add remote %s (%s, push %s)"
	setFetchURLDescriptionTemplate   = "set url of remote %s to %s"
	setPushURLDescriptionTemplate    = "set push url of remote %s to %s"
	clearPushURLDescriptionTemplate  = "clear push url of remote %s"
	removeActionDescriptionTemplate  = "remove remote %s"
	unknownActionDescriptionTemplate = "%s remote %s"
	lineBreakCharactersConstant      = "\r\n"
)

var (
	// ErrRemoteNameEmpty indicates a blank remote name.
	ErrRemoteNameEmpty = errors.New(remoteNameEmptyErrorMessage)
	// ErrRemoteNameLineBreak indicates a remote name spanning several lines.
	ErrRemoteNameLineBreak = errors.New(remoteNameLineBreakErrorMessage)
)

// RemoteName is a validated remote identifier.
type RemoteName string

// NewRemoteName validates the raw identifier. Names are otherwise opaque.
func NewRemoteName(raw string) (RemoteName, error) {
	if len(strings.TrimSpace(raw)) == 0 {
		return "", ErrRemoteNameEmpty
	}
	if strings.ContainsAny(raw, lineBreakCharactersConstant) {
		return "", ErrRemoteNameLineBreak
	}
	return RemoteName(raw), nil
}

// String returns the remote name.
func (name RemoteName) String() string {
	return string(name)
}

// RemoteState is the observed configuration of one remote in a repository.
//
// PushURL holds the effective push destination, which equals FetchURL when no
// explicit push URL is configured. PushURLConfigured reports whether an explicit
// push URL exists.
type RemoteState struct {
	Name              string
	FetchURL          string
	PushURL           string
	PushURLConfigured bool
}

// ActionKind enumerates remote mutations.
type ActionKind string

// Supported remote mutations.
const (
	ActionAddRemote   ActionKind = "add"
	ActionSetFetchURL ActionKind = "set-url"
	ActionSetPushURL  ActionKind = "set-push-url"
	ActionRemove      ActionKind = "remove"
)

// Action is one remote mutation.
//
// FetchURL is set for add and set-url actions. PushURL is optional for add
// actions; for set-push-url actions an empty PushURL clears the explicit push URL.
type Action struct {
	Kind     ActionKind
	Name     string
	FetchURL string
	PushURL  string
}

// NewAddRemoteAction describes the creation of a remote.
func NewAddRemoteAction(name string, fetchURL string, pushURL string) Action {
	return Action{Kind: ActionAddRemote, Name: name, FetchURL: fetchURL, PushURL: pushURL}
}

// NewSetFetchURLAction describes a fetch URL change.
func NewSetFetchURLAction(name string, fetchURL string) Action {
	return Action{Kind: ActionSetFetchURL, Name: name, FetchURL: fetchURL}
}

// NewSetPushURLAction describes a push URL change. An empty URL clears it.
func NewSetPushURLAction(name string, pushURL string) Action {
	return Action{Kind: ActionSetPushURL, Name: name, PushURL: pushURL}
}

// NewRemoveRemoteAction describes the deletion of a remote.
func NewRemoveRemoteAction(name string) Action {
	return Action{Kind: ActionRemove, Name: name}
}

// IsRemoval reports whether the action deletes a remote.
func (action Action) IsRemoval() bool {
	return action.Kind == ActionRemove
}

// String describes the action.
func (action Action) String() string {
	switch action.Kind {
	case ActionAddRemote:
		if len(action.PushURL) > 0 {
			return fmt.Sprintf(addWithPushDescriptionTemplate, action.Name, action.FetchURL, action.PushURL)
		}
		return fmt.Sprintf(addActionDescriptionTemplate, action.Name, action.FetchURL)
	case ActionSetFetchURL:
		return fmt.Sprintf(setFetchURLDescriptionTemplate, action.Name, action.FetchURL)
	case ActionSetPushURL:
		if len(action.PushURL) == 0 {
			return fmt.Sprintf(clearPushURLDescriptionTemplate, action.Name)
		}
		return fmt.Sprintf(setPushURLDescriptionTemplate, action.Name, action.PushURL)
	case ActionRemove:
		return fmt.Sprintf(removeActionDescriptionTemplate, action.Name)
	default:
		return fmt.Sprintf(unknownActionDescriptionTemplate, action.Kind, action.Name)
	}
}

// Submodule identifies a nested repository below a parent repository.
// Path is relative to the parent and uses forward slashes.
type Submodule struct {
	Path       string
	Repository string
}

// GitExecutor exposes the subset of shell execution used by repository services.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// RemoteReader snapshots the remotes of a repository.
type RemoteReader interface {
	ReadRemotes(executionContext context.Context, repositoryPath string) ([]RemoteState, error)
}

// RemoteMutator applies single remote mutations to a repository.
type RemoteMutator interface {
	AddRemote(executionContext context.Context, repositoryPath string, remoteName string, fetchURL string) error
	SetFetchURL(executionContext context.Context, repositoryPath string, remoteName string, fetchURL string) error
	SetPushURL(executionContext context.Context, repositoryPath string, remoteName string, pushURL string) error
	RemoveRemote(executionContext context.Context, repositoryPath string, remoteName string) error
}

// RemoteManager reads and mutates remotes.
type RemoteManager interface {
	RemoteReader
	RemoteMutator
}

// RepositoryLocator resolves the working tree root containing a path.
type RepositoryLocator interface {
	ResolveRepositoryRoot(executionContext context.Context, path string) (string, error)
}

// SubmoduleDiscoverer enumerates the immediate nested repositories of a repository.
type SubmoduleDiscoverer interface {
	DiscoverSubmodules(executionContext context.Context, repositoryPath string) ([]Submodule, error)
}
