package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type TopicHandler struct {
	topicService service.TopicService
}

func NewTopicHandler(topicService service.TopicService) *TopicHandler {
	return &TopicHandler{topicService: topicService}
}

func (h *TopicHandler) RegisterRoutes(router *gin.RouterGroup) {
	topics := router.Group("/api/topics", middleware.RequireAuth())
	{
		topics.GET("", h.ListTopics)
		topics.POST("", h.CreateTopic)
		topics.GET("/:id", h.GetTopic)
		topics.PUT("/:id", h.UpdateTopic)
		topics.DELETE("/:id", h.DeleteTopic)
	}
}

// ListTopics returns the company's content topics
// @Summary      List topics
// @Tags         topics
// @Security     BearerAuth
// @Produce      json
// @Param        page    query  int     false  "Page number (default: 1)"
// @Param        limit   query  int     false  "Items per page (default: 20)"
// @Param        status  query  string  false  "Filter by status: suggested, planned, drafted, published"
// @Param        search  query  string  false  "Search by title"
// @Success      200  {object}  response.Response
// @Router       /api/topics [get]
func (h *TopicHandler) ListTopics(c *gin.Context) {
	params := pagination.Parse(c)

	topics, total, err := h.topicService.ListTopics(c.Request.Context(),
		middleware.CallerCompanyID(c), c.Query("status"), c.Query("search"), params.Page, params.Limit)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, topics, params.NewMeta(total)))
}

// CreateTopic creates a content topic
// @Summary      Create topic
// @Tags         topics
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.CreateTopicRequest  true  "Topic payload"
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/topics [post]
func (h *TopicHandler) CreateTopic(c *gin.Context) {
	var req service.CreateTopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	topic, err := h.topicService.CreateTopic(c.Request.Context(), middleware.CallerCompanyID(c), req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, topic))
}

func (h *TopicHandler) GetTopic(c *gin.Context) {
	topic, err := h.topicService.GetTopic(c.Request.Context(), c.Param("id"), middleware.CallerCompanyID(c))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, topic))
}

func (h *TopicHandler) UpdateTopic(c *gin.Context) {
	var req service.UpdateTopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	topic, err := h.topicService.UpdateTopic(c.Request.Context(), c.Param("id"), middleware.CallerCompanyID(c), req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, topic))
}

func (h *TopicHandler) DeleteTopic(c *gin.Context) {
	if err := h.topicService.DeleteTopic(c.Request.Context(), c.Param("id"), middleware.CallerCompanyID(c)); err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Topic deleted successfully"}))
}
