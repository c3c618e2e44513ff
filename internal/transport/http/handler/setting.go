package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"docuchat/internal/app"
	"docuchat/internal/transport/http/response"
)

type SettingHandler struct {
	settingService *app.SettingService
}

type SettingRequest struct {
	Username string `json:"username"`
	System   string `json:"system"`
}

func NewSettingHandler(settingService *app.SettingService) *SettingHandler {
	return &SettingHandler{settingService: settingService}
}

func (h *SettingHandler) Get(c *gin.Context) {
	setting, err := h.settingService.Get(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "fetch settings failed")
		return
	}
	response.OK(c, setting)
}

func (h *SettingHandler) Update(c *gin.Context) {
	var req SettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	setting, err := h.settingService.Update(c.Request.Context(), app.SettingInput{
		Username: req.Username,
		System:   req.System,
	})
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "update settings failed")
		return
	}
	response.OK(c, setting)
}
