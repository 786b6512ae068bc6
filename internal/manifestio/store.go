package manifestio

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/afero"

	"github.com/twangodev/gemote/internal/manifest"
	repoerrors "github.com/twangodev/gemote/internal/repos/errors"
)

const (
	// DefaultFileNameConstant is the configuration file name looked up in the repository root.
	DefaultFileNameConstant = ".gemote"

	notFoundReasonConstant          = "config file not found"
	readFailureReasonConstant       = "failed to read"
	existsErrorTemplateConstant     = "%s already exists. Use --force to overwrite"
	writeErrorTemplateConstant      = "write %s: %w"
	statErrorTemplateConstant       = "inspect %s: %w"
	documentFilePermissionsConstant = fs.FileMode(0o644)
	temporaryFileSuffixConstant     = ".tmp"
)

// FileExistsError reports a save that would overwrite an existing document without force.
type FileExistsError struct {
	Path string
}

// Error describes the refusal.
func (existsError FileExistsError) Error() string {
	return fmt.Sprintf(existsErrorTemplateConstant, existsError.Path)
}

// Store loads and saves documents.
type Store struct {
	fileSystem afero.Fs
}

// NewStore constructs a Store over the filesystem. A nil filesystem selects the OS filesystem.
func NewStore(fileSystem afero.Fs) *Store {
	if fileSystem == nil {
		fileSystem = afero.NewOsFs()
	}
	return &Store{fileSystem: fileSystem}
}

// Load reads, decodes, and validates the document at path.
func (store *Store) Load(path string) (manifest.Node, error) {
	content, readError := afero.ReadFile(store.fileSystem, path)
	if readError != nil {
		if errors.Is(readError, fs.ErrNotExist) || errors.Is(readError, os.ErrNotExist) {
			return manifest.Node{}, repoerrors.ConfigError{Location: path, Reason: notFoundReasonConstant}
		}
		return manifest.Node{}, repoerrors.ConfigError{Location: path, Reason: readFailureReasonConstant, Cause: readError}
	}
	return Unmarshal(path, content)
}

// Exists reports whether a document is present at path.
func (store *Store) Exists(path string) (bool, error) {
	exists, statError := afero.Exists(store.fileSystem, path)
	if statError != nil {
		return false, fmt.Errorf(statErrorTemplateConstant, path, statError)
	}
	return exists, nil
}

// Save encodes the node and writes it to path. An existing file is replaced only when overwrite is set.
// The document is written to a sibling temporary file first and renamed into place.
func (store *Store) Save(path string, node manifest.Node, overwrite bool) error {
	if !overwrite {
		exists, existsError := store.Exists(path)
		if existsError != nil {
			return existsError
		}
		if exists {
			return FileExistsError{Path: path}
		}
	}

	content, encodeError := Marshal(node)
	if encodeError != nil {
		return encodeError
	}

	temporaryPath := path + temporaryFileSuffixConstant
	if writeError := afero.WriteFile(store.fileSystem, temporaryPath, content, documentFilePermissionsConstant); writeError != nil {
		return fmt.Errorf(writeErrorTemplateConstant, path, writeError)
	}
	if renameError := store.fileSystem.Rename(temporaryPath, path); renameError != nil {
		_ = store.fileSystem.Remove(temporaryPath)
		return fmt.Errorf(writeErrorTemplateConstant, path, renameError)
	}
	return nil
}
