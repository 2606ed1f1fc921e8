package audit

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/JayPadhiyar-42/scorepact/pkg/responses"
)

// AuditController handles audit history queries
type AuditController struct {
	repo AuditRepository
}

// NewAuditController creates a new audit controller
func NewAuditController(repo AuditRepository) *AuditController {
	return &AuditController{repo: repo}
}

// GetMatchAudit returns the audit history for one match
func (ac *AuditController) GetMatchAudit(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		responses.BadRequest(c, "Invalid id parameter")
		return
	}
	matchID := uint(id)

	page, pageSize := paginationParams(c)
	entries, total, listErr := ac.repo.List(&matchID, Action(c.Query("action")), page, pageSize)
	if listErr != nil {
		responses.InternalServerError(c, "Failed to fetch audit history")
		return
	}

	responses.SendPaginated(c, http.StatusOK, "", entries, total, page, pageSize)
}

// GetAudit returns audit history across matches, optionally filtered by action
func (ac *AuditController) GetAudit(c *gin.Context) {
	page, pageSize := paginationParams(c)
	entries, total, err := ac.repo.List(nil, Action(c.Query("action")), page, pageSize)
	if err != nil {
		responses.InternalServerError(c, "Failed to fetch audit history")
		return
	}

	responses.SendPaginated(c, http.StatusOK, "", entries, total, page, pageSize)
}

func paginationParams(c *gin.Context) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	pageSize, err := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if err != nil || pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}
