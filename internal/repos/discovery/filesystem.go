package discovery

import (
	"context"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"

	"github.com/twangodev/gemote/internal/repos/shared"
)

const gitMetadataEntryNameConstant = ".git"

// FilesystemSubmoduleDiscoverer locates nested git repositories on disk.
type FilesystemSubmoduleDiscoverer struct {
	fileSystem afero.Fs
}

// NewFilesystemSubmoduleDiscoverer constructs a discoverer backed by afero.Walk.
// A nil filesystem selects the operating system filesystem.
func NewFilesystemSubmoduleDiscoverer(fileSystem afero.Fs) *FilesystemSubmoduleDiscoverer {
	if fileSystem == nil {
		fileSystem = afero.NewOsFs()
	}
	return &FilesystemSubmoduleDiscoverer{fileSystem: fileSystem}
}

// DiscoverSubmodules walks the repository and returns the directories below it that contain a
// .git entry, either a directory or a gitlink file. The walk does not descend into a discovered
// repository, so only the immediate nested repositories are returned, sorted by relative path.
// Symbolic links are not followed.
func (discoverer *FilesystemSubmoduleDiscoverer) DiscoverSubmodules(executionContext context.Context, repositoryPath string) ([]shared.Submodule, error) {
	root := filepath.Clean(repositoryPath)
	rootInfo, statError := discoverer.fileSystem.Stat(root)
	if statError != nil {
		return nil, statError
	}
	if !rootInfo.IsDir() {
		return nil, &os.PathError{Op: "discover", Path: root, Err: os.ErrInvalid}
	}

	submodules := []shared.Submodule{}
	walkError := afero.Walk(discoverer.fileSystem, root, func(path string, info os.FileInfo, walkError error) error {
		if contextError := executionContext.Err(); contextError != nil {
			return contextError
		}
		if walkError != nil {
			if path == root {
				return walkError
			}
			return nil
		}
		if path == root || !info.IsDir() {
			return nil
		}
		if info.Name() == gitMetadataEntryNameConstant {
			return filepath.SkipDir
		}

		if _, metadataError := discoverer.fileSystem.Stat(filepath.Join(path, gitMetadataEntryNameConstant)); metadataError != nil {
			return nil
		}

		relativePath, relativeError := filepath.Rel(root, path)
		if relativeError != nil {
			return relativeError
		}
		submodules = append(submodules, shared.Submodule{Path: filepath.ToSlash(relativePath), Repository: path})
		return filepath.SkipDir
	})
	if walkError != nil {
		return nil, walkError
	}

	sort.Slice(submodules, func(leftIndex int, rightIndex int) bool {
		return submodules[leftIndex].Path < submodules[rightIndex].Path
	})
	return submodules, nil
}
