package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"patient-portal-server/internal/models"
)

var (
	_ PatientRepository      = (*MemoryPatientRepository)(nil)
	_ ConversationRepository = (*MemoryConversationRepository)(nil)
)

func newPatient() *models.Patient {
	expires := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return &models.Patient{
		Name:    "Jane Doe",
		Age:     40,
		Address: "1 Elm St",
		Phone:   "555-0100",
		Email:   "jane@example.com",
		Active:  true,
		Reports: []models.Report{
			{ID: "r1", Filename: "a.pdf", Path: "1-a.pdf", Description: "first", UploadedAt: time.Now()},
			{ID: "r2", Filename: "b.pdf", Path: "2-b.pdf", ExpirationDate: &expires, UploadedAt: time.Now()},
		},
	}
}

func TestPatientRoundTripPreservesReports(t *testing.T) {
	repo := NewMemoryPatientRepository()
	p := newPatient()
	require.NoError(t, repo.Create(context.Background(), p))

	loaded, err := repo.FindByID(context.Background(), p.ID)
	require.NoError(t, err)

	assert.Equal(t, p.Name, loaded.Name)
	assert.Equal(t, p.Reports, loaded.Reports)
}

func TestFindByIDUnknown(t *testing.T) {
	repo := NewMemoryPatientRepository()
	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrPatientNotFound)
}

func TestSaveAdvancesVersion(t *testing.T) {
	repo := NewMemoryPatientRepository()
	p := newPatient()
	require.NoError(t, repo.Create(context.Background(), p))

	loaded, err := repo.FindByID(context.Background(), p.ID)
	require.NoError(t, err)
	before := loaded.Version

	loaded.Name = "Jane Smith"
	require.NoError(t, repo.Save(context.Background(), loaded))
	assert.Equal(t, before+1, loaded.Version)

	reloaded, err := repo.FindByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane Smith", reloaded.Name)
	assert.Equal(t, before+1, reloaded.Version)
}

func TestSaveRejectsStaleVersion(t *testing.T) {
	repo := NewMemoryPatientRepository()
	p := newPatient()
	require.NoError(t, repo.Create(context.Background(), p))

	first, err := repo.FindByID(context.Background(), p.ID)
	require.NoError(t, err)
	second, err := repo.FindByID(context.Background(), p.ID)
	require.NoError(t, err)

	first.Name = "First Writer"
	require.NoError(t, repo.Save(context.Background(), first))

	second.Name = "Second Writer"
	err = repo.Save(context.Background(), second)
	assert.ErrorIs(t, err, ErrVersionConflict)

	// The first write survives.
	loaded, err := repo.FindByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "First Writer", loaded.Name)
}

func TestFindAllOrdersByCreation(t *testing.T) {
	repo := NewMemoryPatientRepository()

	a := &models.Patient{Name: "A", Age: 1, Address: "x", Phone: "x", Email: "a@x"}
	require.NoError(t, repo.Create(context.Background(), a))
	time.Sleep(time.Millisecond)
	b := &models.Patient{Name: "B", Age: 2, Address: "x", Phone: "x", Email: "b@x"}
	require.NoError(t, repo.Create(context.Background(), b))

	all, err := repo.FindAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "A", all[0].Name)
	assert.Equal(t, "B", all[1].Name)
}

func TestLoadedAggregateIsDetached(t *testing.T) {
	repo := NewMemoryPatientRepository()
	p := newPatient()
	require.NoError(t, repo.Create(context.Background(), p))

	loaded, err := repo.FindByID(context.Background(), p.ID)
	require.NoError(t, err)
	loaded.Reports = loaded.Reports[:0]

	// Mutating the loaded copy never leaks into the store without Save.
	reloaded, err := repo.FindByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Len(t, reloaded.Reports, 2)
}

func TestConversationBySession(t *testing.T) {
	repo := NewMemoryConversationRepository()

	conv := &models.Conversation{SessionID: "s1"}
	conv.Append(models.SenderUser, "hi")
	require.NoError(t, repo.Save(context.Background(), conv))
	assert.NotEmpty(t, conv.ID)

	loaded, err := repo.FindBySession(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, loaded.Messages, 1)
	assert.Equal(t, "hi", loaded.Messages[0].Text)

	_, err = repo.FindBySession(context.Background(), "s2")
	assert.ErrorIs(t, err, ErrConversationNotFound)
}

func TestConversationMostRecent(t *testing.T) {
	repo := NewMemoryConversationRepository()

	_, err := repo.FindMostRecent(context.Background())
	assert.ErrorIs(t, err, ErrConversationNotFound)

	older := &models.Conversation{SessionID: "old"}
	require.NoError(t, repo.Save(context.Background(), older))
	time.Sleep(time.Millisecond)
	newer := &models.Conversation{SessionID: "new"}
	require.NoError(t, repo.Save(context.Background(), newer))

	latest, err := repo.FindMostRecent(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "new", latest.SessionID)
}
