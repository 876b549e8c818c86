package handlers

import "github.com/gofiber/fiber/v2"

// RegisterRoutes mounts the OCR API on router
func RegisterRoutes(router fiber.Router, ocrHandler *OCRHandler, healthHandler *HealthHandler) {
	// Health check
	router.Get("/", healthHandler.GetRoot)
	router.Get("/health", healthHandler.GetHealth)

	// OCR routes
	ocrGroup := router.Group("/ocr")
	ocrGroup.Post("/upload", ocrHandler.UploadImage)
	ocrGroup.Get("/results", ocrHandler.GetResults)
	ocrGroup.Get("/results/export", ocrHandler.ExportResults)
	ocrGroup.Put("/results/:id", ocrHandler.UpdateResult)
	ocrGroup.Delete("/results/:id", ocrHandler.DeleteResult)
}
