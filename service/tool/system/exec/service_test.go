package exec

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestService_Run(t *testing.T) {
	ctx := context.Background()
	service := New()
	defer service.Close()

	output := &Output{}
	err := service.Run(ctx, &Input{Commands: []string{"echo hello"}}, output)
	assert.Nil(t, err)
	assert.Contains(t, output.Stdout, "hello")
	assert.Equal(t, 0, output.Status)
	assert.Equal(t, 1, len(output.Commands))
}

func TestService_Run_abortOnError(t *testing.T) {
	ctx := context.Background()
	service := New()
	defer service.Close()

	output := &Output{}
	err := service.Run(ctx, &Input{Commands: []string{"exit 3", "echo never"}}, output)
	assert.Nil(t, err)
	assert.NotEqual(t, 0, output.Status)
	assert.Equal(t, 1, len(output.Commands))
	assert.NotContains(t, output.Stdout, "never")
}

func TestService_Run_validation(t *testing.T) {
	service := New()
	defer service.Close()
	assert.NotNil(t, service.Run(context.Background(), &Input{}, &Output{}))
}
