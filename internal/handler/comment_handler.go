package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	commentService service.CommentService
}

func NewCommentHandler(commentService service.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

func (h *CommentHandler) RegisterRoutes(router *gin.RouterGroup) {
	comments := router.Group("/api/comments", middleware.RequireAuth())
	{
		comments.GET("", h.ListComments)
		comments.POST("", h.CreateComment)
		comments.DELETE("/:id", h.DeleteComment)
	}
}

// ListComments returns comments for one content entity, oldest first
// @Summary      List comments
// @Tags         comments
// @Security     BearerAuth
// @Produce      json
// @Param        entity_type  query  string  true   "Entity type: blog_post, social_post"
// @Param        entity_id    query  string  true   "Entity ID"
// @Param        page         query  int     false  "Page number (default: 1)"
// @Param        limit        query  int     false  "Items per page (default: 20)"
// @Success      200  {object}  response.Response
// @Router       /api/comments [get]
func (h *CommentHandler) ListComments(c *gin.Context) {
	entityType := c.Query("entity_type")
	entityID := c.Query("entity_id")
	if entityType == "" || entityID == "" {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "entity_type and entity_id are required"))
		return
	}

	params := pagination.Parse(c)
	comments, total, err := h.commentService.ListComments(c.Request.Context(), entityType, entityID, params.Page, params.Limit)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, comments, params.NewMeta(total)))
}

// CreateComment adds a comment to a content entity
// @Summary      Create comment
// @Tags         comments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.CreateCommentRequest  true  "Comment payload"
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/comments [post]
func (h *CommentHandler) CreateComment(c *gin.Context) {
	var req service.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	comment, err := h.commentService.CreateComment(c.Request.Context(), middleware.CallerCompanyID(c), middleware.CallerID(c), req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, comment))
}

func (h *CommentHandler) DeleteComment(c *gin.Context) {
	err := h.commentService.DeleteComment(c.Request.Context(), c.Param("id"), middleware.CallerID(c), c.GetString("userRole"))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Comment deleted successfully"}))
}
