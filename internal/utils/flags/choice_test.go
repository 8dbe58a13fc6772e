package flags

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func TestFormatChoiceUsage(t *testing.T) {
	testCases := []struct {
		name           string
		defaultChoice  string
		choices        []string
		description    string
		expectedOutput string
	}{
		{
			name:           "DefaultFirstChoice",
			defaultChoice:  "cli",
			choices:        []string{"cli", "go-git"},
			description:    "Git access backend.",
			expectedOutput: "`<CLI|go-git>` Git access backend.",
		},
		{
			name:           "DefaultSecondChoice",
			defaultChoice:  "console",
			choices:        []string{"structured", "console"},
			description:    "Log encoding.",
			expectedOutput: "`<structured|CONSOLE>` Log encoding.",
		},
		{
			name:           "EmptyDescription",
			defaultChoice:  "alpha",
			choices:        []string{"alpha", "beta"},
			description:    "",
			expectedOutput: "`<ALPHA|beta>`",
		},
		{
			name:           "DuplicateChoicesIgnored",
			defaultChoice:  "beta",
			choices:        []string{"beta", "beta", "alpha", "alpha"},
			description:    "Select between options.",
			expectedOutput: "`<BETA|alpha>` Select between options.",
		},
		{
			name:           "WhitespaceTrimmed",
			defaultChoice:  "primary",
			choices:        []string{" primary ", " secondary "},
			description:    "Pick a palette.",
			expectedOutput: "`<PRIMARY|secondary>` Pick a palette.",
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			actual := FormatChoiceUsage(testCase.defaultChoice, testCase.choices, testCase.description)
			require.Equal(t, testCase.expectedOutput, actual)
		})
	}
}

func TestParseChoice(t *testing.T) {
	parsed, parseError := ParseChoice(" GO-GIT ", []string{"cli", "go-git"})
	require.NoError(t, parseError)
	require.Equal(t, "go-git", parsed)

	_, parseError = ParseChoice("libgit2", []string{"cli", "go-git"})
	require.EqualError(t, parseError, `invalid value "libgit2": expected one of cli|go-git`)
}

func TestAddChoiceFlag(t *testing.T) {
	testCases := []struct {
		name          string
		arguments     []string
		expectedValue string
		expectError   bool
	}{
		{name: "DefaultApplied", arguments: []string{}, expectedValue: "cli"},
		{name: "ExplicitValue", arguments: []string{"--backend", "go-git"}, expectedValue: "go-git"},
		{name: "CaseInsensitive", arguments: []string{"--backend=CLI"}, expectedValue: "cli"},
		{name: "InvalidRejected", arguments: []string{"--backend", "svn"}, expectedValue: "cli", expectError: true},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			command := &cobra.Command{}

			var backendValue string
			AddChoiceFlag(command.Flags(), &backendValue, "backend", "cli", []string{"cli", "go-git"}, "Git access backend.")

			parseError := command.ParseFlags(testCase.arguments)
			if testCase.expectError {
				require.Error(t, parseError)
			} else {
				require.NoError(t, parseError)
			}
			require.Equal(t, testCase.expectedValue, backendValue)
		})
	}
}
