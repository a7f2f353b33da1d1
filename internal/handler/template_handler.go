package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type TemplateHandler struct {
	templateService service.TemplateService
}

func NewTemplateHandler(templateService service.TemplateService) *TemplateHandler {
	return &TemplateHandler{templateService: templateService}
}

func (h *TemplateHandler) RegisterRoutes(router *gin.RouterGroup) {
	templates := router.Group("/api/approval-workflows/templates")
	{
		templates.GET("", middleware.RequireAuth(), h.ListTemplates)
		templates.POST("", middleware.RequireRole(model.RoleAdmin), h.CreateTemplate)
		templates.GET("/:templateId", middleware.RequireAuth(), h.GetTemplate)
		templates.PUT("/:templateId", middleware.RequireRole(model.RoleAdmin), h.UpdateTemplate)
		templates.DELETE("/:templateId", middleware.RequireRole(model.RoleAdmin), h.DeleteTemplate)
	}
}

// ListTemplates returns the company's approval templates
// @Summary      List approval templates
// @Tags         approval-templates
// @Security     BearerAuth
// @Produce      json
// @Param        page         query  int     false  "Page number (default: 1)"
// @Param        limit        query  int     false  "Items per page (default: 20)"
// @Param        entity_type  query  string  false  "Filter by entity type"
// @Success      200  {object}  response.Response
// @Router       /api/approval-workflows/templates [get]
func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	params := pagination.Parse(c)

	templates, total, err := h.templateService.ListTemplates(c.Request.Context(),
		middleware.CallerCompanyID(c), c.Query("entity_type"), params.Page, params.Limit)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, templates, params.NewMeta(total)))
}

// CreateTemplate creates an approval template (admin only)
// @Summary      Create approval template
// @Tags         approval-templates
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.CreateTemplateRequest  true  "Template payload"
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/approval-workflows/templates [post]
func (h *TemplateHandler) CreateTemplate(c *gin.Context) {
	var req service.CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	template, err := h.templateService.CreateTemplate(c.Request.Context(),
		middleware.CallerCompanyID(c), middleware.CallerID(c), req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, template))
}

func (h *TemplateHandler) GetTemplate(c *gin.Context) {
	template, err := h.templateService.GetTemplate(c.Request.Context(), c.Param("templateId"), middleware.CallerCompanyID(c))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, template))
}

func (h *TemplateHandler) UpdateTemplate(c *gin.Context) {
	var req service.UpdateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	template, err := h.templateService.UpdateTemplate(c.Request.Context(), c.Param("templateId"),
		middleware.CallerCompanyID(c), middleware.CallerID(c), req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, template))
}

func (h *TemplateHandler) DeleteTemplate(c *gin.Context) {
	err := h.templateService.DeleteTemplate(c.Request.Context(), c.Param("templateId"),
		middleware.CallerCompanyID(c), middleware.CallerID(c))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Template deleted successfully"}))
}
