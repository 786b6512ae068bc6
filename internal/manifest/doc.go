// Package manifest models the declared remote configuration of a repository tree.
//
// A Node holds the settings, remote declarations, and per-path submodule
// nodes of one repository. Nodes are validated before any repository is
// touched and can be derived from an observed remote snapshot for saving.
package manifest
