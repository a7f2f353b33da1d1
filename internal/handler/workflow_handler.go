package handler

import (
	"net/http"
	"time"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type WorkflowHandler struct {
	workflowService service.WorkflowService
}

func NewWorkflowHandler(workflowService service.WorkflowService) *WorkflowHandler {
	return &WorkflowHandler{workflowService: workflowService}
}

func (h *WorkflowHandler) RegisterRoutes(router *gin.RouterGroup) {
	workflows := router.Group("/api/approval-workflows", middleware.RequireAuth())
	{
		workflows.POST("", h.CreateWorkflow)
		workflows.GET("", h.ListWorkflows)
		workflows.GET("/dashboard/stats", h.DashboardStats)
		workflows.POST("/bulk-approval", h.BulkApprove)
		workflows.GET("/:id", h.GetWorkflow)
		workflows.PUT("/:id", h.UpdateWorkflow)
		workflows.DELETE("/:id", h.DeleteWorkflow)
		workflows.POST("/:id/submit", h.SubmitWorkflow)
		workflows.POST("/:id/decision", h.RecordDecision)
		workflows.GET("/:id/timeline", h.GetTimeline)
	}
}

// CreateWorkflow creates a draft approval workflow for a content entity
// @Summary      Create approval workflow
// @Tags         approval-workflows
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.CreateWorkflowRequest  true  "Workflow payload"
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/approval-workflows [post]
func (h *WorkflowHandler) CreateWorkflow(c *gin.Context) {
	var req service.CreateWorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	workflow, err := h.workflowService.CreateWorkflow(c.Request.Context(),
		middleware.CallerCompanyID(c), middleware.CallerID(c), req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, workflow))
}

// ListWorkflows returns workflows with filters and aggregate counts
// @Summary      List approval workflows
// @Tags         approval-workflows
// @Security     BearerAuth
// @Produce      json
// @Param        page           query  int     false  "Page number (default: 1)"
// @Param        limit          query  int     false  "Items per page (default: 20)"
// @Param        status         query  string  false  "Filter by status"
// @Param        entity_type    query  string  false  "Filter by entity type: blog_post, social_post"
// @Param        priority       query  string  false  "Filter by priority"
// @Param        assigned_to_me query  bool    false  "Only workflows where the caller is a reviewer"
// @Param        authored_by_me query  bool    false  "Only workflows authored by the caller"
// @Param        due_before     query  string  false  "Due on or before (RFC3339)"
// @Param        due_after      query  string  false  "Due on or after (RFC3339)"
// @Success      200  {object}  response.Response
// @Router       /api/approval-workflows [get]
func (h *WorkflowHandler) ListWorkflows(c *gin.Context) {
	params := pagination.Parse(c)

	filter := service.WorkflowFilter{
		Status:       c.Query("status"),
		EntityType:   c.Query("entity_type"),
		Priority:     c.Query("priority"),
		AssignedToMe: c.Query("assigned_to_me") == "true",
		AuthoredByMe: c.Query("authored_by_me") == "true",
		Page:         params.Page,
		Limit:        params.Limit,
	}
	if v := c.Query("due_before"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.DueBefore = &t
		}
	}
	if v := c.Query("due_after"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.DueAfter = &t
		}
	}

	result, err := h.workflowService.ListWorkflows(c.Request.Context(),
		middleware.CallerCompanyID(c), middleware.CallerID(c), filter)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, result, params.NewMeta(result.Total)))
}

// DashboardStats returns workflow aggregates for the company dashboard
// @Summary      Approval dashboard stats
// @Tags         approval-workflows
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /api/approval-workflows/dashboard/stats [get]
func (h *WorkflowHandler) DashboardStats(c *gin.Context) {
	stats, err := h.workflowService.GetDashboardStats(c.Request.Context(), middleware.CallerCompanyID(c))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, stats))
}

// BulkApprove approves every listed workflow the caller is eligible for
// @Summary      Bulk approve workflows
// @Tags         approval-workflows
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.BulkApprovalRequest  true  "Workflow ids"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/approval-workflows/bulk-approval [post]
func (h *WorkflowHandler) BulkApprove(c *gin.Context) {
	var req service.BulkApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.workflowService.BulkApprove(c.Request.Context(), middleware.CallerID(c), req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

func (h *WorkflowHandler) GetWorkflow(c *gin.Context) {
	workflow, err := h.workflowService.GetWorkflow(c.Request.Context(), c.Param("id"), middleware.CallerCompanyID(c))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, workflow))
}

// UpdateWorkflow edits a draft workflow (author only)
// @Summary      Update approval workflow
// @Tags         approval-workflows
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                         true  "Workflow ID"
// @Param        payload  body  service.UpdateWorkflowRequest  true  "Update payload"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/approval-workflows/{id} [put]
func (h *WorkflowHandler) UpdateWorkflow(c *gin.Context) {
	var req service.UpdateWorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	workflow, err := h.workflowService.UpdateWorkflow(c.Request.Context(), c.Param("id"), middleware.CallerID(c), req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, workflow))
}

func (h *WorkflowHandler) DeleteWorkflow(c *gin.Context) {
	if err := h.workflowService.DeleteWorkflow(c.Request.Context(), c.Param("id"), middleware.CallerID(c)); err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Workflow deleted successfully"}))
}

// SubmitWorkflow moves a draft workflow into review
// @Summary      Submit approval workflow
// @Tags         approval-workflows
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Workflow ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/approval-workflows/{id}/submit [post]
func (h *WorkflowHandler) SubmitWorkflow(c *gin.Context) {
	workflow, err := h.workflowService.SubmitWorkflow(c.Request.Context(), c.Param("id"), middleware.CallerID(c))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, workflow))
}

// RecordDecision records the caller's verdict on the active review step
// @Summary      Record decision
// @Tags         approval-workflows
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                  true  "Workflow ID"
// @Param        payload  body  service.DecisionRequest true  "Decision payload"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /api/approval-workflows/{id}/decision [post]
func (h *WorkflowHandler) RecordDecision(c *gin.Context) {
	var req service.DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	workflow, err := h.workflowService.RecordDecision(c.Request.Context(), c.Param("id"), middleware.CallerID(c), req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, workflow))
}

// GetTimeline returns the chronological event list for a workflow
// @Summary      Workflow timeline
// @Tags         approval-workflows
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Workflow ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/approval-workflows/{id}/timeline [get]
func (h *WorkflowHandler) GetTimeline(c *gin.Context) {
	events, err := h.workflowService.GetTimeline(c.Request.Context(), c.Param("id"), middleware.CallerCompanyID(c))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, events))
}
