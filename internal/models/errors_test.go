package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError_ErrorMessage(t *testing.T) {
	err := NewValidationError("title", "cannot be empty")
	assert.Equal(t, "title: cannot be empty", err.Error())
}

func TestValidationError_ErrorMessageWithoutField(t *testing.T) {
	err := &ValidationError{Problem: "malformed request"}
	assert.Equal(t, "malformed request", err.Error())
}

func TestNotFoundError_ErrorMessage(t *testing.T) {
	err := NewNotFoundError("task", "t1")
	assert.Equal(t, "task not found: t1", err.Error())
}

func TestConflictError_ErrorMessage_VersionMismatch(t *testing.T) {
	err := NewVersionConflictError("project", "p1", 3, 2)
	assert.Equal(t, "conflict on project p1: expected version 3, found 2", err.Error())
}

func TestConflictError_ErrorMessage_StructuralReason(t *testing.T) {
	err := NewStructuralConflictError("dependency", "d1", "would introduce a cycle")
	assert.Equal(t, "conflict on dependency d1: would introduce a cycle", err.Error())
}

func TestDatabaseError_UnwrapsUnderlyingError(t *testing.T) {
	cause := errors.New("disk full")
	err := NewDatabaseError("insert task", cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "insert task")
}

func TestConfigError_UnwrapsUnderlyingError(t *testing.T) {
	cause := errors.New("yaml: line 3: bad indentation")
	err := NewConfigError("workflow.yaml", cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "workflow.yaml")
}
