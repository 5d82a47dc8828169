package services

import "errors"

var (
	// ErrReportNotFound means the patient exists but owns no report with the
	// given id. Distinct from repository.ErrPatientNotFound so handlers can
	// report which lookup failed.
	ErrReportNotFound = errors.New("report not found")

	// ErrConflict is returned when a save keeps losing the version race after
	// the bounded number of retries.
	ErrConflict = errors.New("patient is being modified concurrently, try again")
)
