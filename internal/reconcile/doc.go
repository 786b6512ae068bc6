// Package reconcile computes the remote changes that bring repositories in line
// with their declared configuration.
//
// Diff compares one repository snapshot with one declared node and is pure.
// Reconciler walks a repository and, optionally, its nested repositories,
// pairing each with its declared node and producing an ordered Report that an
// applier can execute or preview.
package reconcile
