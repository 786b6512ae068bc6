package docs_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/twangodev/gemote/cmd/cli"
	"github.com/twangodev/gemote/internal/manifestio"
)

const (
	readmeFileNameConstant           = "README.md"
	fenceEndConstant                 = "```"
	tomlFenceStartConstant           = "```toml"
	yamlFenceStartConstant           = "```yaml"
	remotesHeaderMarkerConstant      = "# .gemote"
	settingsHeaderMarkerConstant     = "# gemote.yaml"
	parentDirectoryReferenceConstant = ".."
	missingHeaderMessageConstant     = "README example missing header marker %q"
	missingStartFenceMessageConstant = "README example missing fence start for %q"
	missingEndFenceMessageConstant   = "README example missing fence end for %q"
	unexpectedSectionMessageTemplate = "unexpected settings section %s"
	unexpectedKeyMessageTemplate     = "unexpected settings key %s.%s"
)

func readReadme(testInstance *testing.T) string {
	testInstance.Helper()

	workingDirectory, workingDirectoryError := os.Getwd()
	require.NoError(testInstance, workingDirectoryError)

	readmePath := filepath.Join(workingDirectory, parentDirectoryReferenceConstant, readmeFileNameConstant)
	contentBytes, readError := os.ReadFile(readmePath)
	require.NoError(testInstance, readError)
	return string(contentBytes)
}

// extractSnippet returns the fenced block that contains the header marker, marker included.
func extractSnippet(testInstance *testing.T, contentText string, fenceStart string, headerMarker string) string {
	testInstance.Helper()

	headerIndex := strings.Index(contentText, headerMarker)
	require.NotEqualf(testInstance, -1, headerIndex, missingHeaderMessageConstant, headerMarker)

	fenceStartIndex := strings.LastIndex(contentText[:headerIndex], fenceStart)
	require.NotEqualf(testInstance, -1, fenceStartIndex, missingStartFenceMessageConstant, headerMarker)

	fenceEndRelativeIndex := strings.Index(contentText[headerIndex:], fenceEndConstant)
	require.NotEqualf(testInstance, -1, fenceEndRelativeIndex, missingEndFenceMessageConstant, headerMarker)
	fenceEndIndex := headerIndex + fenceEndRelativeIndex

	return strings.TrimSpace(contentText[fenceStartIndex+len(fenceStart) : fenceEndIndex])
}

func TestReadmeRemoteConfigurationParses(testInstance *testing.T) {
	snippet := extractSnippet(testInstance, readReadme(testInstance), tomlFenceStartConstant, remotesHeaderMarkerConstant)

	node, parseError := manifestio.Unmarshal(readmeFileNameConstant, []byte(snippet))
	require.NoError(testInstance, parseError)

	require.Len(testInstance, node.Remotes, 2)
	require.Len(testInstance, node.Submodules, 1)
	require.Contains(testInstance, node.Submodules, "libs/core")
}

func TestReadmeSettingsUseKnownKeys(testInstance *testing.T) {
	snippet := extractSnippet(testInstance, readReadme(testInstance), yamlFenceStartConstant, settingsHeaderMarkerConstant)

	defaultContent, _ := cli.EmbeddedDefaultConfiguration()
	var knownSettings map[string]map[string]any
	require.NoError(testInstance, yaml.Unmarshal(defaultContent, &knownSettings))

	var readmeSettings map[string]map[string]any
	require.NoError(testInstance, yaml.Unmarshal([]byte(snippet), &readmeSettings))
	require.NotEmpty(testInstance, readmeSettings)

	for sectionName, sectionValues := range readmeSettings {
		knownSection, sectionKnown := knownSettings[sectionName]
		require.Truef(testInstance, sectionKnown, unexpectedSectionMessageTemplate, sectionName)
		for keyName := range sectionValues {
			_, keyKnown := knownSection[keyName]
			require.Truef(testInstance, keyKnown, unexpectedKeyMessageTemplate, sectionName, keyName)
		}
	}
}
