package reconcile

import (
	"github.com/twangodev/gemote/internal/repos/shared"
)

// ExtraRemoteOutcome records how a local remote without a declaration was handled.
type ExtraRemoteOutcome string

// Possible outcomes for undeclared local remotes.
const (
	ExtraRemoteIgnored ExtraRemoteOutcome = "ignored"
	ExtraRemoteWarned  ExtraRemoteOutcome = "warned"
	ExtraRemoteRemoved ExtraRemoteOutcome = "removed"
)

// ExtraRemote is a local remote that the declaration does not mention.
type ExtraRemote struct {
	Name    string
	Outcome ExtraRemoteOutcome
}

// Plan is the outcome of diffing one repository.
type Plan struct {
	Actions      []shared.Action
	ExtraRemotes []ExtraRemote
}

// NodeReport is the plan for one repository of the tree.
//
// Path is empty for the root and the slash-separated path from the root
// otherwise. MissingSubmodules lists declared child paths, relative to this
// node, for which no nested repository exists. A node with Err set carries no
// actions and its nested repositories were not visited.
type NodeReport struct {
	Path              string
	Repository        string
	Actions           []shared.Action
	ExtraRemotes      []ExtraRemote
	MissingSubmodules []string
	Err               error
}

// Report is the ordered reconciliation plan of a repository tree: the root
// first, then nested repositories depth-first in discovery order.
type Report struct {
	Nodes             []NodeReport
	IgnoredSubmodules []string
}

// ActionCount returns the number of planned actions across all nodes.
func (report Report) ActionCount() int {
	count := 0
	for _, node := range report.Nodes {
		count += len(node.Actions)
	}
	return count
}

// HasActions reports whether any node plans a change.
func (report Report) HasActions() bool {
	return report.ActionCount() > 0
}

// FailedNodes returns the nodes that could not be evaluated.
func (report Report) FailedNodes() []NodeReport {
	failed := []NodeReport{}
	for _, node := range report.Nodes {
		if node.Err != nil {
			failed = append(failed, node)
		}
	}
	return failed
}

// ExtraRemotesWithOutcome returns the undeclared remotes with the outcome, paired with their node path.
func (report Report) ExtraRemotesWithOutcome(outcome ExtraRemoteOutcome) []NodeExtraRemote {
	matches := []NodeExtraRemote{}
	for _, node := range report.Nodes {
		for _, extraRemote := range node.ExtraRemotes {
			if extraRemote.Outcome == outcome {
				matches = append(matches, NodeExtraRemote{Path: node.Path, Repository: node.Repository, Remote: extraRemote})
			}
		}
	}
	return matches
}

// NodeExtraRemote locates an undeclared remote within the tree.
type NodeExtraRemote struct {
	Path       string
	Repository string
	Remote     ExtraRemote
}

const rootDisplayPathConstant = "."

// DisplayPath returns the node path for user-facing output, "." for the root.
func (node NodeReport) DisplayPath() string {
	if len(node.Path) == 0 {
		return rootDisplayPathConstant
	}
	return node.Path
}
