package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"patient-portal-server/internal/models"
)

// GormPatientRepository is the MySQL-backed PatientRepository.
type GormPatientRepository struct {
	db *gorm.DB
}

func NewGormPatientRepository(db *gorm.DB) *GormPatientRepository {
	return &GormPatientRepository{db: db}
}

func (r *GormPatientRepository) Create(ctx context.Context, p *models.Patient) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("creating patient: %w", err)
	}
	return nil
}

func (r *GormPatientRepository) FindByID(ctx context.Context, id string) (*models.Patient, error) {
	var p models.Patient
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPatientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading patient %s: %w", id, err)
	}
	return &p, nil
}

func (r *GormPatientRepository) FindAll(ctx context.Context) ([]models.Patient, error) {
	var patients []models.Patient
	if err := r.db.WithContext(ctx).Order("created_at asc").Find(&patients).Error; err != nil {
		return nil, fmt.Errorf("listing patients: %w", err)
	}
	return patients, nil
}

// Save updates the whole document guarded by the version column. The WHERE
// clause on the old version is the compare half of the compare-and-swap; the
// incremented column is the swap half.
func (r *GormPatientRepository) Save(ctx context.Context, p *models.Patient) error {
	loaded := p.Version
	p.Version = loaded + 1

	res := r.db.WithContext(ctx).Model(&models.Patient{}).
		Where("id = ? AND version = ?", p.ID, loaded).
		Select("name", "age", "address", "phone", "email", "active", "version", "reports").
		Updates(p)
	if res.Error != nil {
		p.Version = loaded
		return fmt.Errorf("saving patient %s: %w", p.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		p.Version = loaded
		return ErrVersionConflict
	}
	return nil
}

// GormConversationRepository is the MySQL-backed ConversationRepository.
type GormConversationRepository struct {
	db *gorm.DB
}

func NewGormConversationRepository(db *gorm.DB) *GormConversationRepository {
	return &GormConversationRepository{db: db}
}

func (r *GormConversationRepository) FindBySession(ctx context.Context, sessionID string) (*models.Conversation, error) {
	var c models.Conversation
	err := r.db.WithContext(ctx).First(&c, "session_id = ?", sessionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrConversationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading conversation for session %s: %w", sessionID, err)
	}
	return &c, nil
}

func (r *GormConversationRepository) FindMostRecent(ctx context.Context) (*models.Conversation, error) {
	var c models.Conversation
	err := r.db.WithContext(ctx).Order("created_at desc").First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrConversationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading most recent conversation: %w", err)
	}
	return &c, nil
}

func (r *GormConversationRepository) Save(ctx context.Context, c *models.Conversation) error {
	if err := r.db.WithContext(ctx).Save(c).Error; err != nil {
		return fmt.Errorf("saving conversation: %w", err)
	}
	return nil
}
