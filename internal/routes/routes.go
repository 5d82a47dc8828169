package routes

import (
	"github.com/gin-gonic/gin"

	"patient-portal-server/internal/handlers"
	"patient-portal-server/internal/services"
	"patient-portal-server/pkg/metrics"
)

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, patientSvc *services.PatientService, chatSvc *services.ChatService, collector *metrics.Collector, uploadsDir string) {
	// Initialize handlers
	patientHandler := handlers.NewPatientHandler(patientSvc, collector)
	chatHandler := handlers.NewChatHandler(chatSvc, collector)

	api := router.Group("/api")
	{
		patientRoutes := api.Group("/patients")
		{
			patientRoutes.POST("", patientHandler.CreatePatient)
			patientRoutes.GET("", patientHandler.GetPatients)
			patientRoutes.GET("/:id", patientHandler.GetPatientByID)
			patientRoutes.PUT("/:id", patientHandler.UpdatePatient)
			patientRoutes.PUT("/:id/status", patientHandler.UpdatePatientStatus)
			patientRoutes.POST("/:id/reports", patientHandler.UploadReport)
			patientRoutes.DELETE("/:id/reports/:reportId", patientHandler.DeleteReport)
		}

		chatRoutes := api.Group("/chat")
		{
			chatRoutes.POST("", chatHandler.Chat)
			chatRoutes.GET("/history", chatHandler.GetHistory)
		}

		api.POST("/pdf/upload", chatHandler.UploadPdf)
	}

	// Report files are downloaded straight from the uploads directory; the
	// stored report path doubles as the public URL path.
	router.Static("/uploads", uploadsDir)

	router.GET("/metrics", gin.WrapH(metrics.MetricsHandler()))

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})
}
