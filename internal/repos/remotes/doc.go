// Package remotes executes reconciliation reports against repositories.
package remotes
