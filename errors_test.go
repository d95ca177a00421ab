package deckfill

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNotFoundThroughWrapping(t *testing.T) {
	err := fmt.Errorf("read tags: %w", &NotFoundError{Kind: "table", Name: "Balises"})
	assert.True(t, IsNotFound(err))
	assert.False(t, IsNotFound(errors.New("autre")))
	assert.Contains(t, err.Error(), `table "Balises" not found`)
}

func TestIsTransientSignatures(t *testing.T) {
	assert.True(t, IsTransient(errors.New("The message filter indicated that the application is busy: enumeration failed")))
	assert.True(t, IsTransient(errors.New("Call was rejected by callee")))
	assert.True(t, IsTransient(fmt.Errorf("wrapped: %w", errors.New("OLE Automation error 0x80010001"))))
	assert.False(t, IsTransient(errors.New("file not found")))
	assert.False(t, IsTransient(nil))
}

func TestMissingParameterErrorListsAll(t *testing.T) {
	err := &MissingParameterError{Names: []string{"marque", "periode"}}
	assert.Equal(t, "missing required parameters: marque, periode", err.Error())
}

func TestIsUnsupported(t *testing.T) {
	err := fmt.Errorf("export: %w", &UnsupportedError{Op: "chart export"})
	assert.True(t, IsUnsupported(err))
	assert.False(t, IsUnsupported(errors.New("x")))
}
