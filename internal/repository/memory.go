package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"patient-portal-server/internal/models"
)

// MemoryPatientRepository is a thread-safe in-memory PatientRepository for
// testing and development. It enforces the same version compare-and-swap as
// the MySQL implementation.
type MemoryPatientRepository struct {
	mu       sync.Mutex
	patients map[string]models.Patient
}

func NewMemoryPatientRepository() *MemoryPatientRepository {
	return &MemoryPatientRepository{patients: make(map[string]models.Patient)}
}

func clonePatient(p models.Patient) models.Patient {
	cp := p
	cp.Reports = make([]models.Report, len(p.Reports))
	copy(cp.Reports, p.Reports)
	return cp
}

func (r *MemoryPatientRepository) Create(_ context.Context, p *models.Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	r.patients[p.ID] = clonePatient(*p)
	return nil
}

func (r *MemoryPatientRepository) FindByID(_ context.Context, id string) (*models.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.patients[id]
	if !ok {
		return nil, ErrPatientNotFound
	}
	cp := clonePatient(stored)
	return &cp, nil
}

func (r *MemoryPatientRepository) FindAll(_ context.Context) ([]models.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]models.Patient, 0, len(r.patients))
	for _, p := range r.patients {
		out = append(out, clonePatient(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryPatientRepository) Save(_ context.Context, p *models.Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.patients[p.ID]
	if !ok {
		return ErrPatientNotFound
	}
	if stored.Version != p.Version {
		return ErrVersionConflict
	}
	p.Version++
	p.UpdatedAt = time.Now()
	r.patients[p.ID] = clonePatient(*p)
	return nil
}

// MemoryConversationRepository is a thread-safe in-memory
// ConversationRepository for testing and development.
type MemoryConversationRepository struct {
	mu            sync.Mutex
	conversations map[string]models.Conversation
}

func NewMemoryConversationRepository() *MemoryConversationRepository {
	return &MemoryConversationRepository{conversations: make(map[string]models.Conversation)}
}

func cloneConversation(c models.Conversation) models.Conversation {
	cp := c
	cp.Messages = make([]models.ChatMessage, len(c.Messages))
	copy(cp.Messages, c.Messages)
	return cp
}

func (r *MemoryConversationRepository) FindBySession(_ context.Context, sessionID string) (*models.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.conversations {
		if c.SessionID == sessionID {
			cp := cloneConversation(c)
			return &cp, nil
		}
	}
	return nil, ErrConversationNotFound
}

func (r *MemoryConversationRepository) FindMostRecent(_ context.Context) (*models.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var latest *models.Conversation
	for _, c := range r.conversations {
		c := c
		if latest == nil || c.CreatedAt.After(latest.CreatedAt) {
			latest = &c
		}
	}
	if latest == nil {
		return nil, ErrConversationNotFound
	}
	cp := cloneConversation(*latest)
	return &cp, nil
}

func (r *MemoryConversationRepository) Save(_ context.Context, c *models.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c.ID == "" {
		c.ID = uuid.New().String()
		c.CreatedAt = time.Now()
	}
	c.UpdatedAt = time.Now()
	r.conversations[c.ID] = cloneConversation(*c)
	return nil
}
