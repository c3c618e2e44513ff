package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"docuchat/internal/app"
	"docuchat/internal/transport/http/response"
)

type DocumentHandler struct {
	ingestService  *app.IngestService
	maxUploadBytes int64
}

func NewDocumentHandler(ingestService *app.IngestService, maxUploadBytes int64) *DocumentHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 10 << 20
	}
	return &DocumentHandler{ingestService: ingestService, maxUploadBytes: maxUploadBytes}
}

// Upload accepts a multipart form with a single "file" field and runs the
// full ingestion pipeline before responding.
func (h *DocumentHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "file field is required")
		return
	}
	if fileHeader.Size > h.maxUploadBytes {
		response.Error(c, http.StatusRequestEntityTooLarge, response.CodeBadRequest, "file too large")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "read uploaded file failed")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxUploadBytes+1))
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "read uploaded file failed")
		return
	}
	if int64(len(data)) > h.maxUploadBytes {
		response.Error(c, http.StatusRequestEntityTooLarge, response.CodeBadRequest, "file too large")
		return
	}

	result, err := h.ingestService.Ingest(c.Request.Context(), app.IngestInput{
		Name: fileHeader.Filename,
		Data: data,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrEmptyUpload):
			response.Error(c, http.StatusBadRequest, response.CodeEmptyUpload, err.Error())
		case errors.Is(err, app.ErrInvalidFileType):
			response.Error(c, http.StatusBadRequest, response.CodeInvalidFileType, err.Error())
		case errors.Is(err, app.ErrDuplicateDocument):
			response.Error(c, http.StatusConflict, response.CodeDuplicateDocument, err.Error())
		case errors.Is(err, app.ErrExtractionFailed):
			response.Error(c, http.StatusBadRequest, response.CodeExtractionFailed, err.Error())
		case errors.Is(err, app.ErrLocalWriteFailed), errors.Is(err, app.ErrEmbeddingFailed):
			response.Error(c, http.StatusInternalServerError, response.CodeIngestFailed, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "upload failed")
		}
		return
	}

	response.OK(c, result)
}

func (h *DocumentHandler) List(c *gin.Context) {
	documents, err := h.ingestService.ListDocuments(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list documents failed")
		return
	}
	response.OK(c, documents)
}

func (h *DocumentHandler) Delete(c *gin.Context) {
	id64, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id64 == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid document id")
		return
	}

	if err := h.ingestService.DeleteDocument(c.Request.Context(), uint(id64)); err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrDocumentNotFound):
			response.Error(c, http.StatusNotFound, response.CodeDocumentNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "delete document failed")
		}
		return
	}

	response.OK(c, gin.H{"deleted_document_id": uint(id64)})
}
