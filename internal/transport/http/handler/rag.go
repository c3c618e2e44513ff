package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"docuchat/internal/app"
	"docuchat/internal/transport/http/response"
)

type RAGHandler struct {
	retrievalService *app.RetrievalService
}

type AskRequest struct {
	Question string `json:"question" binding:"required"`
	TopK     int    `json:"top_k" binding:"omitempty,gt=0,lte=20"`
}

func NewRAGHandler(retrievalService *app.RetrievalService) *RAGHandler {
	return &RAGHandler{retrievalService: retrievalService}
}

func (h *RAGHandler) Ask(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	result, err := h.retrievalService.Ask(c.Request.Context(), app.AskInput{
		Question: req.Question,
		TopK:     req.TopK,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrNoChunks):
			response.Error(c, http.StatusNotFound, response.CodeDocumentNotFound, "no documents have been ingested yet")
		case errors.Is(err, app.ErrRetrievalUnavailable):
			response.Error(c, http.StatusServiceUnavailable, response.CodeRetrievalUnavailable, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "answer generation failed")
		}
		return
	}

	response.OK(c, result)
}
