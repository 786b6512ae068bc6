package manifest

import (
	"github.com/twangodev/gemote/internal/repos/shared"
)

// StateTree is the observed remote snapshot of a repository and its nested repositories.
// Submodule keys are normalized relative paths.
type StateTree struct {
	Remotes    []shared.RemoteState
	Submodules map[string]StateTree
}

// FromState derives the declaration reproducing an observed snapshot.
//
// A push URL is recorded only when one is explicitly configured and differs
// from the fetch URL. Nested repositories that end up declaring nothing are
// omitted. Settings keep their defaults.
func FromState(tree StateTree) Node {
	node := Node{}

	for _, state := range tree.Remotes {
		declaration := RemoteDeclaration{Name: state.Name, FetchURL: state.FetchURL}
		if state.PushURLConfigured && state.PushURL != state.FetchURL {
			declaration.PushURL = state.PushURL
		}
		node.Remotes = append(node.Remotes, declaration)
	}
	if len(node.Remotes) > 1 {
		node.Remotes = node.SortedRemotes()
	}

	for submodulePath, childTree := range tree.Submodules {
		child := FromState(childTree)
		if child.IsEmpty() {
			continue
		}
		if node.Submodules == nil {
			node.Submodules = map[string]Node{}
		}
		node.Submodules[submodulePath] = child
	}

	return node
}
