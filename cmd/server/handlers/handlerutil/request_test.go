package handlerutil

import (
	"errors"
	"fmt"
	"testing"

	"note-weave/internal/services/auth"
	"note-weave/internal/services/notes"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", fmt.Errorf("%w: title is required", notes.ErrInvalidInput), fiber.StatusBadRequest},
		{"duplicate collaborator", notes.ErrDuplicateCollaborator, fiber.StatusBadRequest},
		{"self collaborator", notes.ErrSelfCollaborator, fiber.StatusBadRequest},
		{"registration", auth.ErrRegistrationFailed, fiber.StatusBadRequest},
		{"credentials", auth.ErrInvalidCredentials, fiber.StatusUnauthorized},
		{"access denied", notes.ErrAccessDenied, fiber.StatusForbidden},
		{"owner only", notes.ErrOwnerOnly, fiber.StatusForbidden},
		{"note not found", notes.ErrNoteNotFound, fiber.StatusNotFound},
		{"block not found", notes.ErrBlockNotFound, fiber.StatusNotFound},
		{"grant not found", notes.ErrCollaboratorNotFound, fiber.StatusNotFound},
		{"grant target unknown", notes.ErrUserNotFound, fiber.StatusNotFound},
		{"wrapped not found", fmt.Errorf("lookup: %w", notes.ErrNoteNotFound), fiber.StatusNotFound},
		{"persistence", notes.ErrCreateBlock, fiber.StatusInternalServerError},
		{"unknown", errors.New("boom"), fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusOf(tt.err))
		})
	}
}
