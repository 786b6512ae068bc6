// Package gitrepo reads and rewrites git remote configuration.
//
// RepositoryManager drives the git executable through a shared.GitExecutor,
// exposing the remote snapshot, the four remote mutations, and working tree
// root resolution used by the reconciler.
package gitrepo
