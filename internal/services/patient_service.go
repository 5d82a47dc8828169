package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"patient-portal-server/internal/models"
	"patient-portal-server/internal/notifier"
	"patient-portal-server/internal/repository"
	"patient-portal-server/internal/storage"
)

// maxSaveRetries bounds how often a mutation is replayed after losing the
// version race on save.
const maxSaveRetries = 3

// PatientService is the only component that mutates a patient's report
// sequence. Every mutation follows the same pipeline: load the aggregate,
// apply the mutation, save with an optimistic version check (retried on
// conflict), then fire a best-effort notification that never affects the
// caller's result.
type PatientService struct {
	repo          repository.PatientRepository
	store         storage.Store
	notifier      notifier.Notifier
	log           *zap.Logger
	notifyTimeout time.Duration
}

func NewPatientService(repo repository.PatientRepository, store storage.Store, n notifier.Notifier, log *zap.Logger, notifyTimeout time.Duration) *PatientService {
	return &PatientService{
		repo:          repo,
		store:         store,
		notifier:      n,
		log:           log,
		notifyTimeout: notifyTimeout,
	}
}

// UpdatePatientInput carries the demographic fields for a full update.
type UpdatePatientInput struct {
	Name    string
	Age     int
	Address string
	Phone   string
	Email   string
}

// mutateFunc applies a change to a freshly loaded patient. It may run more
// than once when the save is retried, so it must not capture state from a
// previous attempt's aggregate.
type mutateFunc func(p *models.Patient) error

// noteFunc builds the notification for a successfully persisted patient.
type noteFunc func(p *models.Patient) (subject, body string)

// Create registers a new patient. New patients always start active.
func (s *PatientService) Create(ctx context.Context, p *models.Patient) (*models.Patient, error) {
	p.Active = true
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	s.log.Info("patient created", zap.String("patient_id", p.ID))
	return p, nil
}

// Get returns one patient by id.
func (s *PatientService) Get(ctx context.Context, id string) (*models.Patient, error) {
	return s.repo.FindByID(ctx, id)
}

// List returns all patients.
func (s *PatientService) List(ctx context.Context) ([]models.Patient, error) {
	return s.repo.FindAll(ctx)
}

// AddReport stores the file bytes, appends a report record to the patient's
// sequence and notifies the patient. The blob is written before any metadata
// changes; if the write fails nothing is mutated. If the metadata save fails
// after the blob was written, the orphaned blob is logged and left for
// out-of-band cleanup.
func (s *PatientService) AddReport(ctx context.Context, patientID string, data []byte, originalName, description string, expires *time.Time) (*models.Patient, error) {
	// Resolve the patient before touching storage so an unknown id never
	// produces a blob.
	if _, err := s.repo.FindByID(ctx, patientID); err != nil {
		return nil, err
	}

	key, err := s.store.Save(ctx, data, originalName)
	if err != nil {
		return nil, fmt.Errorf("storing report file: %w", err)
	}

	report := models.Report{
		ID:             uuid.New().String(),
		Filename:       originalName,
		Path:           key,
		Description:    description,
		ExpirationDate: expires,
		UploadedAt:     time.Now(),
	}

	p, err := s.mutate(ctx, patientID,
		func(p *models.Patient) error {
			p.Reports = append(p.Reports, report)
			return nil
		},
		func(p *models.Patient) (string, string) {
			return "New Report Uploaded", fmt.Sprintf(
				"Dear %s,\n\nA new report has been uploaded:\nDescription: %s\nExpiration Date: %s\n\nBest regards,\nYour Healthcare Team",
				p.Name, description, formatExpiration(expires))
		})
	if err != nil {
		s.log.Error("report metadata save failed, blob orphaned",
			zap.String("patient_id", patientID),
			zap.String("blob_key", key),
			zap.Error(err))
		return nil, err
	}

	s.log.Info("report added",
		zap.String("patient_id", patientID),
		zap.String("report_id", report.ID),
		zap.String("blob_key", key))
	return p, nil
}

// RemoveReport deletes a report from the patient's sequence. The blob delete
// is attempted before the metadata removal; a missing blob is tolerated
// because the patient document, not the filesystem, is the source of truth
// for whether the report exists.
func (s *PatientService) RemoveReport(ctx context.Context, patientID, reportID string) (*models.Patient, error) {
	p, err := s.repo.FindByID(ctx, patientID)
	if err != nil {
		return nil, err
	}
	idx := p.ReportIndex(reportID)
	if idx < 0 {
		return nil, ErrReportNotFound
	}

	key := p.Reports[idx].Path
	if err := s.store.Remove(ctx, key); err != nil {
		if errors.Is(err, storage.ErrBlobNotFound) {
			s.log.Warn("report blob already missing",
				zap.String("patient_id", patientID),
				zap.String("blob_key", key))
		} else {
			// Metadata removal must still proceed.
			s.log.Error("report blob delete failed",
				zap.String("patient_id", patientID),
				zap.String("blob_key", key),
				zap.Error(err))
		}
	}

	updated, err := s.mutate(ctx, patientID,
		func(p *models.Patient) error {
			i := p.ReportIndex(reportID)
			if i < 0 {
				return ErrReportNotFound
			}
			p.RemoveReportAt(i)
			return nil
		}, nil)
	if err != nil {
		return nil, err
	}

	s.log.Info("report removed",
		zap.String("patient_id", patientID),
		zap.String("report_id", reportID))
	return updated, nil
}

// UpdateStatus flips the active flag. No notification is sent for status
// changes.
func (s *PatientService) UpdateStatus(ctx context.Context, patientID string, active bool) (*models.Patient, error) {
	return s.mutate(ctx, patientID,
		func(p *models.Patient) error {
			p.Active = active
			return nil
		}, nil)
}

// Update replaces the demographic fields and notifies the patient at their
// updated address.
func (s *PatientService) Update(ctx context.Context, patientID string, in UpdatePatientInput) (*models.Patient, error) {
	return s.mutate(ctx, patientID,
		func(p *models.Patient) error {
			p.Name = in.Name
			p.Age = in.Age
			p.Address = in.Address
			p.Phone = in.Phone
			p.Email = in.Email
			return nil
		},
		func(p *models.Patient) (string, string) {
			return "Your Information Has Been Updated", fmt.Sprintf(
				"Dear %s,\n\nYour information has been updated:\nName: %s\nAge: %d\nAddress: %s\nPhone: %s\nEmail: %s\n\nBest regards,\nYour Healthcare Team",
				p.Name, p.Name, p.Age, p.Address, p.Phone, p.Email)
		})
}

// mutate runs the load-mutate-save pipeline, retrying the whole cycle when
// the save loses the version race. The notification, if any, goes out only
// after the save succeeded and is fully detached from the caller.
func (s *PatientService) mutate(ctx context.Context, patientID string, fn mutateFunc, buildNote noteFunc) (*models.Patient, error) {
	for attempt := 0; attempt <= maxSaveRetries; attempt++ {
		p, err := s.repo.FindByID(ctx, patientID)
		if err != nil {
			return nil, err
		}
		if err := fn(p); err != nil {
			return nil, err
		}

		err = s.repo.Save(ctx, p)
		if err == nil {
			if buildNote != nil {
				subject, body := buildNote(p)
				s.notifyAsync(p.Email, subject, body)
			}
			return p, nil
		}
		if !errors.Is(err, repository.ErrVersionConflict) {
			return nil, err
		}
		s.log.Warn("patient save lost version race, retrying",
			zap.String("patient_id", patientID),
			zap.Int("attempt", attempt+1))
	}
	return nil, ErrConflict
}

// notifyAsync delivers the notification on its own goroutine with a bounded
// timeout. The outcome is logged and nothing else: notification failure is
// never a failure of the operation that triggered it.
func (s *PatientService) notifyAsync(recipient, subject, body string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.notifyTimeout)
		defer cancel()

		if err := s.notifier.Notify(ctx, recipient, subject, body); err != nil {
			s.log.Error("notification failed",
				zap.String("recipient", recipient),
				zap.String("subject", subject),
				zap.Error(err))
			return
		}
		s.log.Info("notification sent",
			zap.String("recipient", recipient),
			zap.String("subject", subject))
	}()
}

func formatExpiration(expires *time.Time) string {
	if expires == nil {
		return "no expiration"
	}
	return expires.Format("January 2, 2006")
}
