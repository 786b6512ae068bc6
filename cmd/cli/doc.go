// Package cli builds the gemote command-line interface: the Cobra command tree, application
// settings loaded through Viper, structured logging, and the mapping from errors to exit codes.
package cli
