package printer

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestService_print(t *testing.T) {
	buffer := new(bytes.Buffer)
	service := NewWithWriter(buffer)

	method, err := service.Method("print")
	assert.Nil(t, err)
	assert.Nil(t, method(context.Background(), &Input{Message: "hello"}, &Output{}))
	assert.Equal(t, "hello\n", buffer.String())

	_, err = service.Method("unknown")
	assert.NotNil(t, err)

	err = method(context.Background(), "not an input", &Output{})
	assert.NotNil(t, err)
}
