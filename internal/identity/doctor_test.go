package identity_test

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/gitidentity/internal/execshell"
	"github.com/temirov/gitidentity/internal/identity"
)

func TestDoctorCommandAllChecksPass(testInstance *testing.T) {
	workingDirectory := testInstance.TempDir()
	writeLookupFile(testInstance, workingDirectory, testWorkLookupTableConstant)

	builder := identity.DoctorCommandBuilder{
		Executor: newTestExecutor(testInstance, newScriptedCommandRunner(successfulResponses())),
		Loader:   newTestLoader(workingDirectory),
	}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)
	output := &bytes.Buffer{}
	command.SetOut(output)
	command.SetContext(context.Background())

	require.NoError(testInstance, command.RunE(command, []string{}))
	expectedOutput := "[ok] git: git version 2.43.0\n" +
		"[ok] user: alice\n" +
		"[ok] working tree: /home/alice/work/api\n" +
		"[ok] lookup: " + filepath.Join(workingDirectory, testLookupFileNameConstant) + " (1 entries)\n"
	require.Equal(testInstance, expectedOutput, output.String())
}

func TestDoctorCommandReportsFailures(testInstance *testing.T) {
	responses := successfulResponses()
	responses[gitVersionCommandKeyConstant] = scriptedResponse{err: errors.New("executable file not found in $PATH")}
	responses[revParseCommandKeyConstant] = scriptedResponse{result: execshell.ExecutionResult{ExitCode: 128, StandardError: "fatal: not a git repository"}}

	builder := identity.DoctorCommandBuilder{
		Executor: newTestExecutor(testInstance, newScriptedCommandRunner(responses)),
		Loader:   newTestLoader(testInstance.TempDir()),
	}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)
	output := &bytes.Buffer{}
	command.SetOut(output)
	command.SetContext(context.Background())

	runError := command.RunE(command, []string{})
	require.ErrorIs(testInstance, runError, identity.ErrDoctorChecksFailed)
	require.EqualError(testInstance, runError, "doctor checks failed: 3 of 4")
	require.Contains(testInstance, output.String(), "[fail] git: ")
	require.Contains(testInstance, output.String(), "[ok] user: alice\n")
	require.Contains(testInstance, output.String(), "[fail] working tree: ")
	require.Contains(testInstance, output.String(), "[fail] lookup: unable to read lookup file")
}
