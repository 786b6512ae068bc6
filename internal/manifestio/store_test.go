package manifestio_test

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/twangodev/gemote/internal/manifest"
	"github.com/twangodev/gemote/internal/manifestio"
	repoerrors "github.com/twangodev/gemote/internal/repos/errors"
)

const storeTestPathConstant = "/work/repo/.gemote"

func TestStoreLoadMissingFile(testInstance *testing.T) {
	store := manifestio.NewStore(afero.NewMemMapFs())

	_, loadError := store.Load(storeTestPathConstant)
	var configError repoerrors.ConfigError
	require.ErrorAs(testInstance, loadError, &configError)
	require.Equal(testInstance, storeTestPathConstant, configError.Location)
	require.Equal(testInstance, "config file not found", configError.Reason)
}

func TestStoreSaveAndLoad(testInstance *testing.T) {
	fileSystem := afero.NewMemMapFs()
	require.NoError(testInstance, fileSystem.MkdirAll("/work/repo", 0o755))
	store := manifestio.NewStore(fileSystem)

	node := manifest.Node{
		Remotes: []manifest.RemoteDeclaration{{Name: "origin", FetchURL: "https://example.com/a.git"}},
	}
	require.NoError(testInstance, store.Save(storeTestPathConstant, node, false))

	exists, existsError := store.Exists(storeTestPathConstant)
	require.NoError(testInstance, existsError)
	require.True(testInstance, exists)

	temporaryExists, temporaryError := afero.Exists(fileSystem, storeTestPathConstant+".tmp")
	require.NoError(testInstance, temporaryError)
	require.False(testInstance, temporaryExists)

	loaded, loadError := store.Load(storeTestPathConstant)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, node, loaded)
}

func TestStoreSaveRefusesOverwriteWithoutForce(testInstance *testing.T) {
	fileSystem := afero.NewMemMapFs()
	require.NoError(testInstance, afero.WriteFile(fileSystem, storeTestPathConstant, []byte("# hand written\n"), 0o644))
	store := manifestio.NewStore(fileSystem)

	node := manifest.Node{
		Remotes: []manifest.RemoteDeclaration{{Name: "origin", FetchURL: "https://example.com/a.git"}},
	}

	saveError := store.Save(storeTestPathConstant, node, false)
	var existsError manifestio.FileExistsError
	require.ErrorAs(testInstance, saveError, &existsError)
	require.Contains(testInstance, saveError.Error(), "--force")
	require.Equal(testInstance, storeTestPathConstant, existsError.Path)

	content, readError := afero.ReadFile(fileSystem, storeTestPathConstant)
	require.NoError(testInstance, readError)
	require.Equal(testInstance, "# hand written\n", string(content))

	require.NoError(testInstance, store.Save(storeTestPathConstant, node, true))
	loaded, loadError := store.Load(storeTestPathConstant)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, node, loaded)
}
