// Package ui renders reconciliation reports and command lifecycle events for people and machines.
//
// Plans, outcomes and warnings are written to the command's output streams,
// while git command lifecycle events flow through a zap logger configured for
// console output.
package ui
