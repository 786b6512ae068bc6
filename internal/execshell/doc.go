// Package execshell runs external tools with structured logging.
//
// ShellExecutor wraps a CommandRunner, logs every command through zap, and
// turns non-zero exit codes into CommandFailedError values. OSCommandRunner
// is the os/exec backed runner used outside of tests.
package execshell
