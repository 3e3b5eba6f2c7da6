package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/artem13815/resumeparser/api/http/presenter"
	"github.com/artem13815/resumeparser/pkg/resume"
)

// FileSaver stores the uploaded original and returns its stored name.
type FileSaver interface {
	Save(original string, data []byte) (string, error)
}

// ResumesHandler serves resume intake and read endpoints.
type ResumesHandler struct {
	svc      resume.UploadUseCase
	repo     resume.Repository
	files    FileSaver
	maxBytes int64
	log      logrus.FieldLogger
}

func NewResumesHandler(svc resume.UploadUseCase, repo resume.Repository, files FileSaver, maxBytes int64, log logrus.FieldLogger) *ResumesHandler {
	return &ResumesHandler{svc: svc, repo: repo, files: files, maxBytes: maxBytes, log: log}
}

// UploadResponse is returned when the model reply was recovered as JSON.
type UploadResponse struct {
	ID     int64           `json:"id"`
	Parsed json.RawMessage `json:"parsed" swaggertype:"object"`
}

// UploadWarningResponse is returned when only the raw model reply was saved.
type UploadWarningResponse struct {
	Warning string `json:"warning"`
	Raw     string `json:"raw"`
	ID      int64  `json:"id"`
}

// Upload принимает PDF-резюме, извлекает текст и структурирует его через LLM.
// @Summary Upload and parse a resume
// @Description Accepts a PDF, extracts its text, asks the LLM for structured JSON and stores the result.
// @Description When the reply holds no JSON the raw reply is stored and UploadWarningResponse is returned instead.
// @Tags    resumes
// @Accept  multipart/form-data
// @Produce json
// @Param   resume formData file true "PDF resume"
// @Success 200 {object} UploadResponse
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 500 {object} presenter.ErrorResponse
// @Router  /upload [post]
func (h *ResumesHandler) Upload(c *fiber.Ctx) error {
	fh, err := c.FormFile("resume")
	if err != nil || fh == nil {
		return presenter.Error(c, http.StatusBadRequest, "No file uploaded")
	}
	if !isPDF(fh.Header.Get("Content-Type")) {
		return presenter.Error(c, http.StatusBadRequest, "only PDF files are accepted")
	}
	if fh.Size > h.maxBytes {
		return presenter.Error(c, http.StatusBadRequest, fmt.Sprintf("file too large: limit is %d bytes", h.maxBytes))
	}
	file, err := fh.Open()
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "failed to open uploaded file")
	}
	defer file.Close()

	data, err := readAtMost(file, h.maxBytes)
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, err.Error())
	}

	stored, err := h.files.Save(fh.Filename, data)
	if err != nil {
		h.log.WithError(err).Error("store upload")
		return presenter.Error(c, http.StatusInternalServerError, "failed to store file")
	}

	out, err := h.svc.Process(c.Context(), resume.Upload{FileName: stored, Data: data})
	if err != nil {
		h.log.WithError(err).WithFields(logrus.Fields{
			"file":  stored,
			"stage": stage(err),
		}).Error("resume upload failed")
		return presenter.Error(c, http.StatusInternalServerError, err.Error())
	}
	if out.Degraded() {
		return presenter.JSON(c, http.StatusOK, UploadWarningResponse{
			Warning: out.Warning,
			Raw:     out.Raw,
			ID:      out.ID,
		})
	}
	return presenter.JSON(c, http.StatusOK, UploadResponse{ID: out.ID, Parsed: out.Parsed})
}

// List returns a short view of all stored resumes.
// @Summary List resumes
// @Description Newest first. Always an array.
// @Tags    resumes
// @Produce json
// @Success 200 {array}  resume.Summary
// @Failure 500 {object} presenter.ErrorResponse
// @Router  /resumes [get]
func (h *ResumesHandler) List(c *fiber.Ctx) error {
	items, err := h.repo.List(c.Context())
	if err != nil {
		h.log.WithError(err).Error("list resumes")
		return presenter.Error(c, http.StatusInternalServerError, err.Error())
	}
	if items == nil {
		items = []resume.Summary{}
	}
	return presenter.JSON(c, http.StatusOK, items)
}

// Get returns the full stored record.
// @Summary Get resume by id
// @Tags    resumes
// @Produce json
// @Param   id path int true "Resume ID"
// @Success 200 {object} resume.Record
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 404 {object} presenter.ErrorResponse
// @Failure 500 {object} presenter.ErrorResponse
// @Router  /resumes/{id} [get]
func (h *ResumesHandler) Get(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid id")
	}
	rec, err := h.repo.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, resume.ErrNotFound) {
			return presenter.Error(c, http.StatusNotFound, "Not found")
		}
		h.log.WithError(err).WithField("id", id).Error("get resume")
		return presenter.Error(c, http.StatusInternalServerError, err.Error())
	}
	return presenter.JSON(c, http.StatusOK, rec)
}

func isPDF(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	return err == nil && mt == "application/pdf"
}

func stage(err error) string {
	switch {
	case errors.Is(err, resume.ErrExtractText):
		return "extract"
	case errors.Is(err, resume.ErrCompletion):
		return "completion"
	case errors.Is(err, resume.ErrPersist):
		return "persist"
	default:
		return "unknown"
	}
}

func readAtMost(f multipart.File, limit int64) ([]byte, error) {
	limited := io.LimitReader(f, limit+1)
	b, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if int64(len(b)) > limit {
		return nil, fmt.Errorf("file too large: limit is %d bytes", limit)
	}
	return b, nil
}
