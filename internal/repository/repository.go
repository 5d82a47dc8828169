// Package repository persists the patient aggregate and chat conversations.
// Patients are loaded and saved as whole documents; Save performs an
// optimistic version check so concurrent read-modify-write cycles against the
// same patient cannot silently drop each other's changes.
package repository

import (
	"context"
	"errors"

	"patient-portal-server/internal/models"
)

var (
	ErrPatientNotFound      = errors.New("patient not found")
	ErrConversationNotFound = errors.New("conversation not found")

	// ErrVersionConflict means the patient row changed between load and save.
	// Callers re-load and retry.
	ErrVersionConflict = errors.New("patient was modified concurrently")
)

// PatientRepository owns the patient aggregate. Round-trips preserve the
// report sequence order and every field verbatim.
type PatientRepository interface {
	Create(ctx context.Context, p *models.Patient) error

	// FindByID returns ErrPatientNotFound when the id does not resolve.
	FindByID(ctx context.Context, id string) (*models.Patient, error)

	FindAll(ctx context.Context) ([]models.Patient, error)

	// Save writes the whole document if and only if the stored version still
	// matches p.Version; on success p.Version is advanced. Returns
	// ErrVersionConflict otherwise.
	Save(ctx context.Context, p *models.Patient) error
}

// ConversationRepository stores chat conversations keyed by session id.
type ConversationRepository interface {
	// FindBySession returns ErrConversationNotFound when no conversation
	// exists for the session.
	FindBySession(ctx context.Context, sessionID string) (*models.Conversation, error)

	// FindMostRecent is a legacy fallback for callers that supply no session
	// id. Returns ErrConversationNotFound when nothing is stored.
	FindMostRecent(ctx context.Context) (*models.Conversation, error)

	Save(ctx context.Context, c *models.Conversation) error
}
