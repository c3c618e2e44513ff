package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"docuchat/internal/app"
	"docuchat/internal/transport/http/response"
)

type PromptHandler struct {
	promptService *app.PromptService
}

type PromptRequest struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content" binding:"required"`
}

func NewPromptHandler(promptService *app.PromptService) *PromptHandler {
	return &PromptHandler{promptService: promptService}
}

func (h *PromptHandler) Create(c *gin.Context) {
	var req PromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	prompt, err := h.promptService.Create(c.Request.Context(), app.PromptInput{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "create prompt failed")
		}
		return
	}

	response.OK(c, prompt)
}

func (h *PromptHandler) List(c *gin.Context) {
	prompts, err := h.promptService.List(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list prompts failed")
		return
	}
	response.OK(c, prompts)
}

func (h *PromptHandler) Update(c *gin.Context) {
	id64, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id64 == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid prompt id")
		return
	}

	var req PromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	prompt, err := h.promptService.Update(c.Request.Context(), uint(id64), app.PromptInput{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrPromptNotFound):
			response.Error(c, http.StatusNotFound, response.CodePromptNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "update prompt failed")
		}
		return
	}

	response.OK(c, prompt)
}

func (h *PromptHandler) Delete(c *gin.Context) {
	id64, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id64 == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid prompt id")
		return
	}

	if err := h.promptService.Delete(c.Request.Context(), uint(id64)); err != nil {
		switch {
		case errors.Is(err, app.ErrPromptNotFound):
			response.Error(c, http.StatusNotFound, response.CodePromptNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "delete prompt failed")
		}
		return
	}

	response.OK(c, gin.H{"deleted_prompt_id": uint(id64)})
}
