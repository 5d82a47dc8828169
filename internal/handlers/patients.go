package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"patient-portal-server/internal/models"
	"patient-portal-server/internal/repository"
	"patient-portal-server/internal/services"
	"patient-portal-server/internal/utils"
	"patient-portal-server/pkg/metrics"
)

// PatientHandler handles patient and report related requests.
type PatientHandler struct {
	service   *services.PatientService
	collector *metrics.Collector
}

// NewPatientHandler creates a new PatientHandler.
func NewPatientHandler(service *services.PatientService, collector *metrics.Collector) *PatientHandler {
	return &PatientHandler{service: service, collector: collector}
}

// CreatePatientRequest represents the request body for registering a patient.
type CreatePatientRequest struct {
	Name    string `json:"name" binding:"required"`
	Age     int    `json:"age" binding:"required,gt=0"`
	Address string `json:"address" binding:"required"`
	Phone   string `json:"phone" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
}

// UpdatePatientRequest represents the request body for a full field update.
type UpdatePatientRequest struct {
	Name    string `json:"name" binding:"required"`
	Age     int    `json:"age" binding:"required,gt=0"`
	Address string `json:"address" binding:"required"`
	Phone   string `json:"phone" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
}

// UpdateStatusRequest represents the request body for flipping the active flag.
type UpdateStatusRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// CreatePatient handles registering a new patient.
func (h *PatientHandler) CreatePatient(c *gin.Context) {
	var req CreatePatientRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	patient, err := h.service.Create(c.Request.Context(), &models.Patient{
		Name:    req.Name,
		Age:     req.Age,
		Address: req.Address,
		Phone:   req.Phone,
		Email:   req.Email,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, patient)
}

// GetPatients returns all patients.
func (h *PatientHandler) GetPatients(c *gin.Context) {
	patients, err := h.service.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, patients)
}

// GetPatientByID returns a single patient.
func (h *PatientHandler) GetPatientByID(c *gin.Context) {
	patient, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, patient)
}

// UpdatePatient replaces the patient's demographic fields.
func (h *PatientHandler) UpdatePatient(c *gin.Context) {
	var req UpdatePatientRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	patient, err := h.service.Update(c.Request.Context(), c.Param("id"), services.UpdatePatientInput{
		Name:    req.Name,
		Age:     req.Age,
		Address: req.Address,
		Phone:   req.Phone,
		Email:   req.Email,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, patient)
}

// UpdatePatientStatus sets the active flag.
func (h *PatientHandler) UpdatePatientStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	patient, err := h.service.UpdateStatus(c.Request.Context(), c.Param("id"), *req.Active)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, patient)
}

// UploadReport accepts a multipart report file with description and optional
// expiration date, and appends it to the patient's report list.
func (h *PatientHandler) UploadReport(c *gin.Context) {
	file, header, err := c.Request.FormFile("report")
	if err != nil {
		utils.BadRequest(c, "Error retrieving report file from form: "+err.Error())
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		utils.InternalServerError(c, "Error reading report file: "+err.Error())
		return
	}

	expires, err := parseExpirationDate(c.PostForm("expirationDate"))
	if err != nil {
		utils.BadRequest(c, "Invalid expirationDate, expected YYYY-MM-DD")
		return
	}

	patient, err := h.service.AddReport(c.Request.Context(), c.Param("id"),
		data, header.Filename, c.PostForm("description"), expires)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.collector.ReportsUploadedTotal.Inc()
	c.JSON(http.StatusOK, patient)
}

// DeleteReport removes one report from the patient's list and deletes the
// underlying file.
func (h *PatientHandler) DeleteReport(c *gin.Context) {
	patient, err := h.service.RemoveReport(c.Request.Context(),
		c.Param("id"), c.Param("reportId"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.collector.ReportsRemovedTotal.Inc()
	c.JSON(http.StatusOK, patient)
}

// parseExpirationDate accepts the date-only form used by the upload form, or
// a full RFC 3339 timestamp. Empty input means no expiration.
func parseExpirationDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// respondServiceError maps service and repository errors to HTTP statuses.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrPatientNotFound):
		utils.NotFound(c, "Patient not found")
	case errors.Is(err, services.ErrReportNotFound):
		utils.NotFound(c, "Report not found")
	case errors.Is(err, services.ErrConflict):
		utils.Conflict(c, err.Error())
	default:
		utils.InternalServerError(c, err.Error())
	}
}
