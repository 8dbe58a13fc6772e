package identity_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/gitidentity/internal/execshell"
	"github.com/temirov/gitidentity/internal/lookup"
	pathutils "github.com/temirov/gitidentity/internal/utils/path"
)

const (
	testUserNameConstant         = "alice"
	testWorkspaceRootConstant    = "/home/alice/work/api"
	testEmailConstant            = "a@co.com"
	testLookupFileNameConstant   = "lookup.json"
	testWorkLookupTableConstant  = `[{"dir":"work","email":"a@co.com"}]`
	whoAmICommandKeyConstant     = "whoami"
	revParseCommandKeyConstant   = "git rev-parse --show-toplevel"
	setEmailCommandKeyConstant   = "git config --local user.email a@co.com"
	setNameCommandKeyConstant    = "git config --local user.name work"
	gitVersionCommandKeyConstant = "git --version"
	commandKeySeparatorConstant  = " "
)

type scriptedResponse struct {
	result execshell.ExecutionResult
	err    error
}

type scriptedCommandRunner struct {
	responses map[string]scriptedResponse
	recorded  []execshell.ShellCommand
}

func newScriptedCommandRunner(responses map[string]scriptedResponse) *scriptedCommandRunner {
	return &scriptedCommandRunner{responses: responses}
}

func (runner *scriptedCommandRunner) Run(_ context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	runner.recorded = append(runner.recorded, command)
	key := commandKey(command)
	response, exists := runner.responses[key]
	if !exists {
		return execshell.ExecutionResult{ExitCode: 1, StandardError: "unexpected command " + key}, nil
	}
	return response.result, response.err
}

func (runner *scriptedCommandRunner) recordedKeys() []string {
	keys := make([]string, 0, len(runner.recorded))
	for _, command := range runner.recorded {
		keys = append(keys, commandKey(command))
	}
	return keys
}

func commandKey(command execshell.ShellCommand) string {
	return strings.Join(append([]string{string(command.Name)}, command.Details.Arguments...), commandKeySeparatorConstant)
}

func successfulResponses() map[string]scriptedResponse {
	return map[string]scriptedResponse{
		whoAmICommandKeyConstant:     {result: execshell.ExecutionResult{StandardOutput: testUserNameConstant + "\n"}},
		revParseCommandKeyConstant:   {result: execshell.ExecutionResult{StandardOutput: testWorkspaceRootConstant + "\n"}},
		setEmailCommandKeyConstant:   {result: execshell.ExecutionResult{}},
		setNameCommandKeyConstant:    {result: execshell.ExecutionResult{}},
		gitVersionCommandKeyConstant: {result: execshell.ExecutionResult{StandardOutput: "git version 2.43.0\n"}},
	}
}

func newTestExecutor(testInstance *testing.T, runner execshell.CommandRunner) *execshell.ShellExecutor {
	testInstance.Helper()
	executor, creationError := execshell.NewShellExecutor(zap.NewNop(), runner)
	require.NoError(testInstance, creationError)
	return executor
}

func newTestLoader(workingDirectory string) *lookup.Loader {
	return lookup.NewLoader(lookup.LoaderDependencies{
		HomeExpander: pathutils.NewHomeExpanderWithProvider(func() (string, error) {
			return workingDirectory, nil
		}),
		WorkingDirectoryProvider: func() (string, error) {
			return workingDirectory, nil
		},
	})
}

func writeLookupFile(testInstance *testing.T, directory string, contents string) string {
	testInstance.Helper()
	lookupPath := filepath.Join(directory, testLookupFileNameConstant)
	require.NoError(testInstance, os.WriteFile(lookupPath, []byte(contents), 0o644))
	return lookupPath
}
