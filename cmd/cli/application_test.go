package cli_test

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/twangodev/gemote/cmd/cli"
	"github.com/twangodev/gemote/cmd/cli/repos"
	flagutils "github.com/twangodev/gemote/internal/utils/flags"
)

const (
	testApplicationConfigFileNameConstant = "settings.yaml"
	testInvalidLogLevelConfigConstant     = "common:\n  log_level: verbose\n"
	testValidLogLevelConfigConstant       = "common:\n  log_level: error\n  log_format: console\n"
	testLogLevelEnvironmentNameConstant   = "GEMOTE_COMMON_LOG_LEVEL"
	testCompletionsCommandConstant        = "completions"
	testBashShellConstant                 = "bash"
)

type applicationOutput struct {
	standardOutput string
	standardError  string
}

func executeApplication(testInstance *testing.T, arguments ...string) (applicationOutput, error) {
	testInstance.Helper()

	standardOutput := &bytes.Buffer{}
	standardError := &bytes.Buffer{}
	application := cli.NewApplication(cli.WithOutputWriters(standardOutput, standardError))
	executionError := application.ExecuteArguments(arguments)
	return applicationOutput{standardOutput: standardOutput.String(), standardError: standardError.String()}, executionError
}

func writeApplicationConfiguration(testInstance *testing.T, content string) string {
	testInstance.Helper()

	configurationPath := filepath.Join(testInstance.TempDir(), testApplicationConfigFileNameConstant)
	require.NoError(testInstance, os.WriteFile(configurationPath, []byte(content), 0o644))
	return configurationPath
}

func TestEmbeddedDefaultConfigurationMatchesCommandDefaults(testInstance *testing.T) {
	configurationData, configurationType := cli.EmbeddedDefaultConfiguration()
	require.NotEmpty(testInstance, configurationData)

	viperInstance := viper.New()
	viperInstance.SetConfigType(configurationType)
	require.NoError(testInstance, viperInstance.ReadConfig(bytes.NewReader(configurationData)))

	var configuration cli.ApplicationConfiguration
	decodeHook := viper.DecodeHook(mapstructure.StringToTimeDurationHookFunc())
	require.NoError(testInstance, viperInstance.Unmarshal(&configuration, decodeHook))

	require.Equal(testInstance, "warn", configuration.Common.LogLevel)
	require.Equal(testInstance, "structured", configuration.Common.LogFormat)
	require.Equal(testInstance, time.Duration(0), configuration.Common.GitTimeout)
	require.Equal(testInstance, ".gemote", configuration.Common.ConfigFileName)
	require.Equal(testInstance, repos.DefaultSyncConfiguration(), configuration.Sync)
	require.Equal(testInstance, repos.DefaultSaveConfiguration(), configuration.Save)
}

func TestApplicationCompletions(testInstance *testing.T) {
	testCases := []struct {
		name             string
		shell            string
		expectedFragment string
	}{
		{name: "bash", shell: testBashShellConstant, expectedFragment: "__start_gemote"},
		{name: "zsh", shell: "zsh", expectedFragment: "#compdef gemote"},
		{name: "fish", shell: "fish", expectedFragment: "complete -c gemote"},
		{name: "powershell", shell: "powershell", expectedFragment: "Register-ArgumentCompleter"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			output, executionError := executeApplication(testInstance, testCompletionsCommandConstant, testCase.shell)
			require.NoError(testInstance, executionError)
			require.Contains(testInstance, output.standardOutput, testCase.expectedFragment)
		})
	}
}

func TestApplicationUsageErrors(testInstance *testing.T) {
	testCases := []struct {
		name      string
		arguments []string
	}{
		{name: "unknown_command", arguments: []string{"bogus"}},
		{name: "unknown_flag", arguments: []string{"--bogus"}},
		{name: "unknown_subcommand_flag", arguments: []string{"sync", "--bogus"}},
		{name: "invalid_shell", arguments: []string{testCompletionsCommandConstant, "tcsh"}},
		{name: "missing_shell", arguments: []string{testCompletionsCommandConstant}},
		{name: "invalid_log_level", arguments: []string{"--log-level", "verbose", testCompletionsCommandConstant, testBashShellConstant}},
		{name: "invalid_log_format", arguments: []string{"--log-format=xml", testCompletionsCommandConstant, testBashShellConstant}},
		{name: "invalid_toggle", arguments: []string{"sync", "--dry-run=maybe"}},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			_, executionError := executeApplication(testInstance, testCase.arguments...)
			require.Error(testInstance, executionError)
			require.Equal(testInstance, cli.ExitCodeUsage, cli.ExitCode(executionError))
		})
	}
}

func TestApplicationConfigurationPrecedence(testInstance *testing.T) {
	testCases := []struct {
		name               string
		configuration      string
		environmentValue   string
		flagArguments      []string
		expectErrorMessage string
	}{
		{
			name:               "invalid_level_in_settings_file",
			configuration:      testInvalidLogLevelConfigConstant,
			expectErrorMessage: "unable to create logger",
		},
		{
			name:             "environment_overrides_settings_file",
			configuration:    testInvalidLogLevelConfigConstant,
			environmentValue: "debug",
		},
		{
			name:               "environment_overrides_valid_settings_file",
			configuration:      testValidLogLevelConfigConstant,
			environmentValue:   "verbose",
			expectErrorMessage: "unable to create logger",
		},
		{
			name:          "flag_overrides_settings_file",
			configuration: testInvalidLogLevelConfigConstant,
			flagArguments: []string{"--log-level", "info"},
		},
		{
			name:          "valid_settings_file",
			configuration: testValidLogLevelConfigConstant,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			if len(testCase.environmentValue) > 0 {
				testInstance.Setenv(testLogLevelEnvironmentNameConstant, testCase.environmentValue)
			}
			configurationPath := writeApplicationConfiguration(testInstance, testCase.configuration)

			arguments := append([]string{"--app-config", configurationPath}, testCase.flagArguments...)
			arguments = append(arguments, testCompletionsCommandConstant, testBashShellConstant)
			output, executionError := executeApplication(testInstance, arguments...)

			if len(testCase.expectErrorMessage) > 0 {
				require.Error(testInstance, executionError)
				require.Contains(testInstance, executionError.Error(), testCase.expectErrorMessage)
				require.Equal(testInstance, cli.ExitCodeFailure, cli.ExitCode(executionError))
				return
			}
			require.NoError(testInstance, executionError)
			require.NotEmpty(testInstance, output.standardOutput)
		})
	}
}

func TestApplicationMissingSettingsFile(testInstance *testing.T) {
	missingPath := filepath.Join(testInstance.TempDir(), testApplicationConfigFileNameConstant)
	_, executionError := executeApplication(testInstance, "--app-config", missingPath, testCompletionsCommandConstant, testBashShellConstant)
	require.Error(testInstance, executionError)
	require.Contains(testInstance, executionError.Error(), "unable to load configuration")
	require.Equal(testInstance, cli.ExitCodeFailure, cli.ExitCode(executionError))
}

func TestApplicationWithoutArgumentsPrintsHelp(testInstance *testing.T) {
	output, executionError := executeApplication(testInstance)
	require.NoError(testInstance, executionError)
	require.Contains(testInstance, output.standardOutput, "sync")
	require.Contains(testInstance, output.standardOutput, "save")
	require.Contains(testInstance, output.standardOutput, testCompletionsCommandConstant)
	require.NotContains(testInstance, output.standardOutput, "completion ")
}

func TestExitCode(testInstance *testing.T) {
	testCases := []struct {
		name         string
		err          error
		expectedCode int
	}{
		{name: "success", expectedCode: cli.ExitCodeSuccess},
		{name: "failure", err: errors.New("boom"), expectedCode: cli.ExitCodeFailure},
		{name: "usage", err: flagutils.NewUsageError(errors.New("bad flag")), expectedCode: cli.ExitCodeUsage},
		{name: "wrapped_usage", err: fmt.Errorf("context: %w", flagutils.NewUsageError(errors.New("bad flag"))), expectedCode: cli.ExitCodeUsage},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedCode, cli.ExitCode(testCase.err))
		})
	}
}
