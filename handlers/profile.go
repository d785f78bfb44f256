package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"aliadolaboral/middleware"
	"aliadolaboral/models"
	"aliadolaboral/services/profile"
	"aliadolaboral/utils"

	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	Service profile.ProfileService
}

func NewProfileHandler(s profile.ProfileService) *ProfileHandler {
	return &ProfileHandler{Service: s}
}

func (h *ProfileHandler) ListLawyersHandler(c *gin.Context) {
	var filter models.LawyerDirectoryFilter
	_ = c.ShouldBindQuery(&filter)
	list, err := h.Service.ListLawyers(c.Request.Context(), filter)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *ProfileHandler) PublicProfileHandler(c *gin.Context) {
	p, err := h.Service.PublicProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProfileHandler) MyLawyerProfileHandler(c *gin.Context) {
	account, err := h.Service.MyLawyerProfile(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}

// UpdateLawyerProfileHandler takes a JSON body, or multipart with the JSON in "profile"
// plus optional "photo" and "cedula" images.
func (h *ProfileHandler) UpdateLawyerProfileHandler(c *gin.Context) {
	var in models.LawyerProfileUpdate
	var photo, cedula *models.UploadedFile
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		if raw := c.PostForm("profile"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &in); err != nil {
				utils.JSONError(c, http.StatusBadRequest, "Datos inválidos", err.Error())
				return
			}
		}
		var err error
		if photo, err = formFile(c, "photo"); err != nil {
			utils.RespondError(c, err)
			return
		}
		if cedula, err = formFile(c, "cedula"); err != nil {
			utils.RespondError(c, err)
			return
		}
	} else if !bindJSON(c, &in) {
		return
	}

	res, err := h.Service.UpdateLawyerProfile(c.Request.Context(), middleware.UserID(c), in, photo, cedula)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *ProfileHandler) LawyerMetricsHandler(c *gin.Context) {
	m, err := h.Service.LawyerMetrics(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *ProfileHandler) WorkerProfileHandler(c *gin.Context) {
	p, err := h.Service.WorkerProfile(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProfileHandler) UpsertWorkerProfileHandler(c *gin.Context) {
	var in models.WorkerProfileInput
	if !bindJSON(c, &in) {
		return
	}
	p, err := h.Service.UpsertWorkerProfile(c.Request.Context(), middleware.UserID(c), in)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProfileHandler) SalaryBenchmarkHandler(c *gin.Context) {
	b, err := h.Service.SalaryBenchmark(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}
