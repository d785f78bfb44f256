package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"aliadolaboral/middleware"
	"aliadolaboral/models"
	"aliadolaboral/services/news"
	"aliadolaboral/utils"

	"github.com/gin-gonic/gin"
)

type NewsHandler struct {
	Service news.NewsService
}

func NewNewsHandler(s news.NewsService) *NewsHandler {
	return &NewsHandler{Service: s}
}

// FeedHandler serves the feed for the caller's role, or for ?role= when anonymous.
func (h *NewsHandler) FeedHandler(c *gin.Context) {
	role := middleware.Role(c)
	if role == "" {
		role = c.Query("role")
	}
	items, err := h.Service.Feed(c.Request.Context(), role)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// CreateHandler takes JSON, or multipart with the JSON in "news" and an optional "image".
func (h *NewsHandler) CreateHandler(c *gin.Context) {
	var in models.CreateNewsRequest
	var image *models.UploadedFile
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		if err := json.Unmarshal([]byte(c.PostForm("news")), &in); err != nil {
			utils.JSONError(c, http.StatusBadRequest, "Datos inválidos", err.Error())
			return
		}
		var err error
		if image, err = formFile(c, "image"); err != nil {
			utils.RespondError(c, err)
			return
		}
	} else if !bindJSON(c, &in) {
		return
	}
	item, err := h.Service.Create(c.Request.Context(), in, image)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *NewsHandler) DeleteHandler(c *gin.Context) {
	if err := h.Service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Noticia eliminada"})
}

func (h *NewsHandler) TriggerHandler(c *gin.Context) {
	item, err := h.Service.Ingest(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if item == nil {
		c.JSON(http.StatusOK, gin.H{"message": "No hay noticias nuevas"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Noticia publicada", "news": item})
}
