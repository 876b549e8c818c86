package handlers

import (
	"io"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/MuhamadAgungGumelar/ocr-api/internal/modules/ocr/models"
	"github.com/MuhamadAgungGumelar/ocr-api/internal/modules/ocr/services"
	"github.com/MuhamadAgungGumelar/ocr-api/internal/shared/apperror"
	"github.com/MuhamadAgungGumelar/ocr-api/internal/shared/utils"
	"github.com/gofiber/fiber/v2"
	fiberutils "github.com/gofiber/fiber/v2/utils"
)

// OCRHandler handles OCR-related requests
type OCRHandler struct {
	ocrService         *services.OCRService
	persistenceService *services.PersistenceService
	exportService      *services.ExportService
}

// NewOCRHandler creates a new OCR handler
func NewOCRHandler(ocrService *services.OCRService, persistenceService *services.PersistenceService, exportService *services.ExportService) *OCRHandler {
	return &OCRHandler{
		ocrService:         ocrService,
		persistenceService: persistenceService,
		exportService:      exportService,
	}
}

// UploadImage godoc
// @Summary Run OCR on an image
// @Description Upload an image, extract words with bounding boxes, and optionally store the image and text
// @Tags OCR
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Image file"
// @Param languages formData []string false "Tesseract languages (repeatable)" collectionFormat(multi) default(eng,ind)
// @Param save_result formData boolean false "Persist the image and text" default(true)
// @Param category formData string false "Image category (default, chat)" default(default)
// @Success 200 {object} ocr.OCRResult
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /ocr/upload [post]
func (h *OCRHandler) UploadImage(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail": "File is required.",
		})
	}

	image, err := readImage(fileHeader)
	if err != nil {
		return h.respondError(c, err, map[string]interface{}{"file_name": fileHeader.Filename})
	}

	var languages []string
	if form, err := c.MultipartForm(); err == nil {
		languages = copyValues(form.Value["languages"])
	}

	input := services.UploadInput{
		Image:      *image,
		Languages:  languages,
		SaveResult: parseBool(c.FormValue("save_result"), true),
		Category:   fiberutils.CopyString(c.FormValue("category", "default")),
	}

	result, err := h.ocrService.PerformOCR(c.UserContext(), input)
	if err != nil {
		return h.respondError(c, err, map[string]interface{}{"file_name": image.FileName})
	}

	return c.JSON(result)
}

// GetResults godoc
// @Summary List stored OCR results
// @Description Retrieve all stored OCR results, newest first
// @Tags OCR
// @Produce json
// @Success 200 {array} models.OCRResult
// @Failure 500 {object} map[string]string
// @Router /ocr/results [get]
func (h *OCRHandler) GetResults(c *fiber.Ctx) error {
	results, err := h.persistenceService.List(c.UserContext())
	if err != nil {
		return h.respondError(c, err, nil)
	}

	return c.JSON(results)
}

// ExportResults godoc
// @Summary Export stored OCR results
// @Description Download every stored result as a spreadsheet, PDF or CSV file
// @Tags OCR
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Produce application/pdf
// @Produce text/csv
// @Param format query string false "xlsx, pdf or csv" default(xlsx)
// @Success 200 {file} file
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /ocr/results/export [get]
func (h *OCRHandler) ExportResults(c *fiber.Ctx) error {
	format := fiberutils.CopyString(c.Query("format", "xlsx"))

	file, err := h.exportService.ExportResults(c.UserContext(), format)
	if err != nil {
		return h.respondError(c, err, map[string]interface{}{"format": format})
	}

	c.Attachment(file.FileName)
	c.Set(fiber.HeaderContentType, file.ContentType)
	return c.Send(file.Data)
}

// UpdateResult godoc
// @Summary Update a stored OCR result
// @Description Change the text or file name, or replace the image, of a stored result
// @Tags OCR
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "OCR result ID"
// @Param extracted_text formData string false "Corrected text"
// @Param file_name formData string false "New file name"
// @Param file formData file false "Replacement image"
// @Success 200 {object} models.OCRResult
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /ocr/results/{id} [put]
func (h *OCRHandler) UpdateResult(c *fiber.Ctx) error {
	id := fiberutils.CopyString(c.Params("id"))

	var req models.UpdateOCRResultRequest
	var image *services.ImageUpload

	if form, err := c.MultipartForm(); err == nil {
		req.ExtractedText = firstValue(form.Value, "extracted_text")
		req.FileName = firstValue(form.Value, "file_name")

		if files := form.File["file"]; len(files) > 0 {
			image, err = readImage(files[0])
			if err != nil {
				return h.respondError(c, err, map[string]interface{}{"record_id": id})
			}
		}
	} else {
		// urlencoded bodies carry text fields only
		if v := c.FormValue("extracted_text"); v != "" {
			text := fiberutils.CopyString(v)
			req.ExtractedText = &text
		}
		if v := c.FormValue("file_name"); v != "" {
			name := fiberutils.CopyString(v)
			req.FileName = &name
		}
	}

	record, err := h.persistenceService.Update(c.UserContext(), id, req, image)
	if err != nil {
		return h.respondError(c, err, map[string]interface{}{"record_id": id})
	}

	return c.JSON(record)
}

// DeleteResult godoc
// @Summary Delete a stored OCR result
// @Description Delete a stored result and its image
// @Tags OCR
// @Param id path string true "OCR result ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /ocr/results/{id} [delete]
func (h *OCRHandler) DeleteResult(c *fiber.Ctx) error {
	id := fiberutils.CopyString(c.Params("id"))

	if err := h.persistenceService.Delete(c.UserContext(), id); err != nil {
		return h.respondError(c, err, map[string]interface{}{"record_id": id})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// respondError maps application errors to {"detail": ...} responses
func (h *OCRHandler) respondError(c *fiber.Ctx, err error, fields map[string]interface{}) error {
	if appErr, ok := apperror.As(err); ok {
		status := appErr.HTTPStatus()
		if status >= fiber.StatusInternalServerError {
			utils.LogError("❌ Request failed", err, fields)
		}
		return c.Status(status).JSON(fiber.Map{
			"detail": appErr.Message,
		})
	}

	utils.LogError("❌ Unexpected error", err, fields)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"detail": "An unexpected error occurred: " + err.Error(),
	})
}

func readImage(fileHeader *multipart.FileHeader) (*services.ImageUpload, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return nil, apperror.ClientInputf(err, "Failed to open uploaded file: %v", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, apperror.ClientInputf(err, "Failed to read uploaded file: %v", err)
	}

	return &services.ImageUpload{
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func firstValue(values map[string][]string, key string) *string {
	v, ok := values[key]
	if !ok || len(v) == 0 {
		return nil
	}
	s := fiberutils.CopyString(v[0])
	return &s
}

func copyValues(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, fiberutils.CopyString(v))
	}
	return out
}

func parseBool(raw string, fallback bool) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	switch strings.ToLower(raw) {
	case "yes", "on":
		return true
	case "no", "off":
		return false
	}
	return fallback
}
