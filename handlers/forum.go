package handlers

import (
	"net/http"

	"aliadolaboral/middleware"
	"aliadolaboral/models"
	"aliadolaboral/services/forum"
	"aliadolaboral/utils"

	"github.com/gin-gonic/gin"
)

type ForumHandler struct {
	Service forum.ForumService
}

func NewForumHandler(s forum.ForumService) *ForumHandler {
	return &ForumHandler{Service: s}
}

func (h *ForumHandler) ListPostsHandler(c *gin.Context) {
	posts, err := h.Service.ListPosts(c.Request.Context(), middleware.Role(c), c.Query("topic"), c.Query("filter"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (h *ForumHandler) GetPostHandler(c *gin.Context) {
	post, err := h.Service.GetPost(c.Request.Context(), middleware.Role(c), c.Param("postId"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *ForumHandler) CreatePostHandler(c *gin.Context) {
	var in models.CreatePostRequest
	if !bindJSON(c, &in) {
		return
	}
	post, err := h.Service.CreatePost(c.Request.Context(), middleware.UserID(c), in)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

func (h *ForumHandler) AnswerHandler(c *gin.Context) {
	var in models.CreateAnswerRequest
	if !bindJSON(c, &in) {
		return
	}
	answer, err := h.Service.Answer(c.Request.Context(), middleware.UserID(c), c.Param("postId"), in)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, answer)
}

func (h *ForumHandler) VoteHandler(c *gin.Context) {
	var in models.VoteRequest
	if !bindJSON(c, &in) {
		return
	}
	res, err := h.Service.Vote(c.Request.Context(), middleware.UserID(c), c.Param("answerId"), in.Value)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *ForumHandler) DeletePostHandler(c *gin.Context) {
	if err := h.Service.DeletePost(c.Request.Context(), middleware.UserID(c), middleware.Role(c), c.Param("postId")); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Publicación eliminada"})
}

func (h *ForumHandler) DeleteAnswerHandler(c *gin.Context) {
	if err := h.Service.DeleteAnswer(c.Request.Context(), middleware.UserID(c), middleware.Role(c), c.Param("answerId")); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Respuesta eliminada"})
}

func (h *ForumHandler) HidePostHandler(c *gin.Context) {
	if err := h.Service.HidePost(c.Request.Context(), c.Param("postId")); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Publicación ocultada"})
}
