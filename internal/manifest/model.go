package manifest

import (
	"sort"
)

// Settings holds per-node behavior switches.
type Settings struct {
	ExtraRemotes ExtraRemotesPolicy
}

// RemoteDeclaration is the desired configuration of one remote.
// An empty PushURL means no explicit push URL is declared.
type RemoteDeclaration struct {
	Name     string
	FetchURL string
	PushURL  string
}

// HasPushURL reports whether an explicit push URL is declared.
func (declaration RemoteDeclaration) HasPushURL() bool {
	return len(declaration.PushURL) > 0
}

// EffectivePushURL returns the declared push URL or, when absent, the fetch URL.
func (declaration RemoteDeclaration) EffectivePushURL() string {
	if declaration.HasPushURL() {
		return declaration.PushURL
	}
	return declaration.FetchURL
}

// Node is the declared configuration of one repository and its nested repositories.
// Submodule keys are paths relative to the repository owning the node.
type Node struct {
	Settings   Settings
	Remotes    []RemoteDeclaration
	Submodules map[string]Node
}

// Remote looks up a declaration by name.
func (node Node) Remote(name string) (RemoteDeclaration, bool) {
	for _, declaration := range node.Remotes {
		if declaration.Name == name {
			return declaration, true
		}
	}
	return RemoteDeclaration{}, false
}

// SortedRemotes returns the declarations ordered by name.
func (node Node) SortedRemotes() []RemoteDeclaration {
	sorted := append([]RemoteDeclaration{}, node.Remotes...)
	sort.SliceStable(sorted, func(left int, right int) bool {
		return sorted[left].Name < sorted[right].Name
	})
	return sorted
}

// SubmodulePaths returns the submodule keys in ascending order.
func (node Node) SubmodulePaths() []string {
	paths := make([]string, 0, len(node.Submodules))
	for path := range node.Submodules {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// IsEmpty reports whether the node declares nothing beyond default settings.
func (node Node) IsEmpty() bool {
	return len(node.Remotes) == 0 && len(node.Submodules) == 0 && node.Settings == (Settings{})
}
