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

type BlogHandler struct {
	blogService service.BlogService
}

func NewBlogHandler(blogService service.BlogService) *BlogHandler {
	return &BlogHandler{blogService: blogService}
}

func (h *BlogHandler) RegisterRoutes(router *gin.RouterGroup) {
	posts := router.Group("/api/blog-posts", middleware.RequireAuth())
	{
		posts.GET("", h.ListPosts)
		posts.POST("", h.CreatePost)
		posts.GET("/:id", h.GetPost)
		posts.PUT("/:id", h.UpdatePost)
		posts.DELETE("/:id", h.DeletePost)
		posts.POST("/:id/publish", h.PublishPost)
	}
}

// ListPosts returns the company's blog posts
// @Summary      List blog posts
// @Tags         blog-posts
// @Security     BearerAuth
// @Produce      json
// @Param        page    query  int     false  "Page number (default: 1)"
// @Param        limit   query  int     false  "Items per page (default: 20)"
// @Param        status  query  string  false  "Filter by status"
// @Param        author  query  string  false  "Filter by author id"
// @Param        search  query  string  false  "Search by title"
// @Success      200  {object}  response.Response
// @Router       /api/blog-posts [get]
func (h *BlogHandler) ListPosts(c *gin.Context) {
	params := pagination.Parse(c)

	filter := repository.ContentFilter{
		CompanyID: middleware.CallerCompanyID(c),
		AuthorID:  c.Query("author"),
		Status:    c.Query("status"),
		Search:    c.Query("search"),
		Page:      params.Page,
		Limit:     params.Limit,
	}

	posts, total, err := h.blogService.ListPosts(c.Request.Context(), filter)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, posts, params.NewMeta(total)))
}

// CreatePost creates a draft blog post authored by the caller
// @Summary      Create blog post
// @Tags         blog-posts
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.CreateBlogPostRequest  true  "Post payload"
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/blog-posts [post]
func (h *BlogHandler) CreatePost(c *gin.Context) {
	var req service.CreateBlogPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	post, err := h.blogService.CreatePost(c.Request.Context(), middleware.CallerCompanyID(c), middleware.CallerID(c), req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, post))
}

func (h *BlogHandler) GetPost(c *gin.Context) {
	post, err := h.blogService.GetPost(c.Request.Context(), c.Param("id"), middleware.CallerCompanyID(c))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, post))
}

func (h *BlogHandler) UpdatePost(c *gin.Context) {
	var req service.UpdateBlogPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	post, err := h.blogService.UpdatePost(c.Request.Context(), c.Param("id"), middleware.CallerID(c), req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, post))
}

func (h *BlogHandler) DeletePost(c *gin.Context) {
	if err := h.blogService.DeletePost(c.Request.Context(), c.Param("id"), middleware.CallerID(c)); err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Blog post deleted successfully"}))
}

// PublishPost publishes an approved blog post
// @Summary      Publish blog post
// @Tags         blog-posts
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Post ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/blog-posts/{id}/publish [post]
func (h *BlogHandler) PublishPost(c *gin.Context) {
	post, err := h.blogService.PublishPost(c.Request.Context(), c.Param("id"), middleware.CallerCompanyID(c))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, post))
}
