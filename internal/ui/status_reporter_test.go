package ui_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/gitidentity/internal/ui"
)

func TestStatusReporterWritesPlainLinesWhenColorDisabled(testInstance *testing.T) {
	testCases := []struct {
		name           string
		report         func(reporter *ui.StatusReporter)
		expectedOutput string
	}{
		{
			name: "success",
			report: func(reporter *ui.StatusReporter) {
				reporter.Success("Git config user.email updated to a@co.com")
			},
			expectedOutput: "Git config user.email updated to a@co.com\n",
		},
		{
			name: "notice",
			report: func(reporter *ui.StatusReporter) {
				reporter.Notice("nothing to do")
			},
			expectedOutput: "nothing to do\n",
		},
		{
			name: "check_passed",
			report: func(reporter *ui.StatusReporter) {
				reporter.Check("git", true, "git version 2.43.0")
			},
			expectedOutput: "[ok] git: git version 2.43.0\n",
		},
		{
			name: "check_failed",
			report: func(reporter *ui.StatusReporter) {
				reporter.Check("lookup", false, "unable to read lookup file")
			},
			expectedOutput: "[fail] lookup: unable to read lookup file\n",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			output := &bytes.Buffer{}
			testCase.report(ui.NewStatusReporter(output, false))
			require.Equal(testInstance, testCase.expectedOutput, output.String())
		})
	}
}

func TestStatusReporterToleratesNilWriter(testInstance *testing.T) {
	require.NotPanics(testInstance, func() {
		ui.NewStatusReporter(nil, true).Success("ignored")
	})
}
