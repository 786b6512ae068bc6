// Package manifestio reads and writes manifest documents in TOML.
//
// The document layout is a [settings] table, a [remotes.<name>] table per
// remote, and a [submodules."<path>"] table per nested repository holding the
// same layout recursively. Store loads and saves documents through an afero
// filesystem.
package manifestio
