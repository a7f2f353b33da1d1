package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/repository"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type SocialHandler struct {
	socialService service.SocialService
}

func NewSocialHandler(socialService service.SocialService) *SocialHandler {
	return &SocialHandler{socialService: socialService}
}

func (h *SocialHandler) RegisterRoutes(router *gin.RouterGroup) {
	posts := router.Group("/api/social-posts", middleware.RequireAuth())
	{
		posts.GET("", h.ListPosts)
		posts.POST("", h.CreatePost)
		posts.GET("/:id", h.GetPost)
		posts.PUT("/:id", h.UpdatePost)
		posts.DELETE("/:id", h.DeletePost)
		posts.POST("/:id/publish", h.PublishPost)
	}
}

// ListPosts returns the company's social media posts
// @Summary      List social posts
// @Tags         social-posts
// @Security     BearerAuth
// @Produce      json
// @Param        page      query  int     false  "Page number (default: 1)"
// @Param        limit     query  int     false  "Items per page (default: 20)"
// @Param        status    query  string  false  "Filter by status"
// @Param        platform  query  string  false  "Filter by platform: twitter, linkedin, facebook, instagram"
// @Param        search    query  string  false  "Search body text"
// @Success      200  {object}  response.Response
// @Router       /api/social-posts [get]
func (h *SocialHandler) ListPosts(c *gin.Context) {
	params := pagination.Parse(c)

	filter := repository.ContentFilter{
		CompanyID: middleware.CallerCompanyID(c),
		AuthorID:  c.Query("author"),
		Status:    c.Query("status"),
		Platform:  c.Query("platform"),
		Search:    c.Query("search"),
		Page:      params.Page,
		Limit:     params.Limit,
	}

	posts, total, err := h.socialService.ListPosts(c.Request.Context(), filter)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, posts, params.NewMeta(total)))
}

// CreatePost creates a draft social media post authored by the caller
// @Summary      Create social post
// @Tags         social-posts
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.CreateSocialPostRequest  true  "Post payload"
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/social-posts [post]
func (h *SocialHandler) CreatePost(c *gin.Context) {
	var req service.CreateSocialPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	post, err := h.socialService.CreatePost(c.Request.Context(), middleware.CallerCompanyID(c), middleware.CallerID(c), req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, post))
}

func (h *SocialHandler) GetPost(c *gin.Context) {
	post, err := h.socialService.GetPost(c.Request.Context(), c.Param("id"), middleware.CallerCompanyID(c))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, post))
}

func (h *SocialHandler) UpdatePost(c *gin.Context) {
	var req service.UpdateSocialPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	post, err := h.socialService.UpdatePost(c.Request.Context(), c.Param("id"), middleware.CallerID(c), req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, post))
}

func (h *SocialHandler) DeletePost(c *gin.Context) {
	if err := h.socialService.DeletePost(c.Request.Context(), c.Param("id"), middleware.CallerID(c)); err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Social post deleted successfully"}))
}

// PublishPost publishes an approved social post
// @Summary      Publish social post
// @Tags         social-posts
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Post ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/social-posts/{id}/publish [post]
func (h *SocialHandler) PublishPost(c *gin.Context) {
	post, err := h.socialService.PublishPost(c.Request.Context(), c.Param("id"), middleware.CallerCompanyID(c))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, post))
}
