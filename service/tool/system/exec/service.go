// Package exec runs shell commands on the local host through a pooled gosh
// session. Commands execute in order; by default the first non-zero exit
// stops the batch.
package exec

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/viant/gosh"
	"github.com/viant/gosh/runner"
	"github.com/viant/gosh/runner/local"
	"github.com/viant/toolgate/model/types"
)

const name = "system.exec"

// Service executes terminal commands on the local system.
type Service struct {
	session *gosh.Service
	mux     sync.Mutex
}

// New creates a new exec service.
func New() *Service {
	return &Service{}
}

// Name returns the service name
func (s *Service) Name() string {
	return name
}

// SourceKey identifies this service to by-source-key policy selectors.
func (s *Service) SourceKey() string {
	return "local_shell"
}

// Methods returns the service methods
func (s *Service) Methods() types.Signatures {
	return []types.Signature{
		{
			Name:                "run",
			Description:         "Executes shell commands on the local host.",
			Input:               reflect.TypeOf(&Input{}),
			Output:              reflect.TypeOf(&Output{}),
			DefaultApprovalMode: types.ApprovalRequired,
		},
	}
}

// Method returns the specified method
func (s *Service) Method(name string) (types.Executable, error) {
	switch strings.ToLower(name) {
	case "run":
		return s.run, nil
	default:
		return nil, types.NewMethodNotFoundError(name)
	}
}

func (s *Service) run(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*Input)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*Output)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	return s.Run(ctx, input, output)
}

// Run executes the input commands in order, aggregating stdout and stderr.
func (s *Service) Run(ctx context.Context, input *Input, output *Output) error {
	if len(input.Commands) == 0 {
		return fmt.Errorf("at least one command is required")
	}
	session, err := s.getSession(ctx, input.Env)
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}
	if input.Directory != "" {
		if _, _, err := session.Run(ctx, fmt.Sprintf("cd %s", input.Directory)); err != nil {
			return fmt.Errorf("failed to change directory: %w", err)
		}
	}
	abortOnError := true
	if input.AbortOnError != nil {
		abortOnError = *input.AbortOnError
	}
	timeout := time.Duration(input.TimeoutMs) * time.Millisecond
	if timeout == 0 {
		timeout = time.Minute
	}

	commands := make([]*Command, 0, len(input.Commands))
	var combinedStdout, combinedStderr strings.Builder
	var lastStatus int
	for _, cmd := range input.Commands {
		stdout, stderr, status := s.runCommand(ctx, session, cmd, timeout)
		commands = append(commands, &Command{Input: cmd, Stdout: stdout, Stderr: stderr, Status: status})
		if stdout != "" {
			combinedStdout.WriteString(stdout)
			combinedStdout.WriteString("\n")
		}
		if stderr != "" {
			combinedStderr.WriteString(stderr)
			combinedStderr.WriteString("\n")
		}
		lastStatus = status
		if abortOnError && status != 0 {
			break
		}
	}
	output.Commands = commands
	output.Stdout = strings.TrimSpace(combinedStdout.String())
	output.Stderr = strings.TrimSpace(combinedStderr.String())
	output.Status = lastStatus
	return nil
}

func (s *Service) runCommand(ctx context.Context, session *gosh.Service, command string, timeout time.Duration) (string, string, int) {
	started := time.Now()
	stdout, status, err := session.Run(ctx, command, runner.WithTimeout(int(timeout.Milliseconds())))
	if elapsed := time.Since(started); elapsed > timeout && err == nil {
		err = fmt.Errorf("command %v timed out after %s", command, elapsed)
	}
	if status == 0 && err == nil {
		return stdout, "", status
	}
	if stdout == "" && err != nil {
		stdout = err.Error()
	}
	return "", stdout, status
}

func (s *Service) getSession(ctx context.Context, env map[string]string) (*gosh.Service, error) {
	s.mux.Lock()
	defer s.mux.Unlock()
	if s.session != nil {
		return s.session, nil
	}
	var envOptions []runner.Option
	if len(env) > 0 {
		envOptions = append(envOptions, runner.WithEnvironment(env))
	}
	session, err := gosh.New(ctx, local.New(envOptions...))
	if err != nil {
		return nil, err
	}
	s.session = session
	return session, nil
}

// Close releases the pooled session.
func (s *Service) Close() error {
	s.mux.Lock()
	defer s.mux.Unlock()
	if s.session == nil {
		return nil
	}
	err := s.session.Close()
	s.session = nil
	return err
}
