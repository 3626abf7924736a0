package api

import "github.com/gin-gonic/gin"

func (h *Handler) DashboardSummary(c *gin.Context) {
	summary, err := h.service.GetDashboardSummary(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	respondOK(c, "", summary)
}

func (h *Handler) MonthlyStats(c *gin.Context) {
	stats, err := h.service.GetMonthlyStats(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	respondOK(c, "", stats)
}

func (h *Handler) CategoryBreakdown(c *gin.Context) {
	stats, err := h.service.GetCategoryBreakdown(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	respondOK(c, "", stats)
}
