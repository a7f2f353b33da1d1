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

type RuleHandler struct {
	ruleService service.RuleService
}

func NewRuleHandler(ruleService service.RuleService) *RuleHandler {
	return &RuleHandler{ruleService: ruleService}
}

func (h *RuleHandler) RegisterRoutes(router *gin.RouterGroup) {
	rules := router.Group("/api/approval-workflows/rules")
	{
		rules.GET("", middleware.RequireAuth(), h.ListRules)
		rules.POST("", middleware.RequireRole(model.RoleAdmin), h.CreateRule)
		rules.GET("/:ruleId", middleware.RequireAuth(), h.GetRule)
		rules.PUT("/:ruleId", middleware.RequireRole(model.RoleAdmin), h.UpdateRule)
		rules.DELETE("/:ruleId", middleware.RequireRole(model.RoleAdmin), h.DeleteRule)
	}
}

// ListRules returns the company's approval rules
// @Summary      List approval rules
// @Tags         approval-rules
// @Security     BearerAuth
// @Produce      json
// @Param        page         query  int     false  "Page number (default: 1)"
// @Param        limit        query  int     false  "Items per page (default: 20)"
// @Param        entity_type  query  string  false  "Filter by entity type"
// @Param        active       query  bool    false  "Only active rules"
// @Success      200  {object}  response.Response
// @Router       /api/approval-workflows/rules [get]
func (h *RuleHandler) ListRules(c *gin.Context) {
	params := pagination.Parse(c)

	rules, total, err := h.ruleService.ListRules(c.Request.Context(),
		middleware.CallerCompanyID(c), c.Query("entity_type"), c.Query("active") == "true", params.Page, params.Limit)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, rules, params.NewMeta(total)))
}

// CreateRule creates an approval rule (admin only)
// @Summary      Create approval rule
// @Tags         approval-rules
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.CreateRuleRequest  true  "Rule payload"
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/approval-workflows/rules [post]
func (h *RuleHandler) CreateRule(c *gin.Context) {
	var req service.CreateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	rule, err := h.ruleService.CreateRule(c.Request.Context(),
		middleware.CallerCompanyID(c), middleware.CallerID(c), req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, rule))
}

func (h *RuleHandler) GetRule(c *gin.Context) {
	rule, err := h.ruleService.GetRule(c.Request.Context(), c.Param("ruleId"), middleware.CallerCompanyID(c))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, rule))
}

func (h *RuleHandler) UpdateRule(c *gin.Context) {
	var req service.UpdateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	rule, err := h.ruleService.UpdateRule(c.Request.Context(), c.Param("ruleId"),
		middleware.CallerCompanyID(c), middleware.CallerID(c), req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, rule))
}

func (h *RuleHandler) DeleteRule(c *gin.Context) {
	err := h.ruleService.DeleteRule(c.Request.Context(), c.Param("ruleId"),
		middleware.CallerCompanyID(c), middleware.CallerID(c))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Rule deleted successfully"}))
}
