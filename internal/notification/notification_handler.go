package notification

import (
	"net/http"

	"go-leave/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	repo   Repository
	logger *zap.Logger
}

func NewHandler(repo Repository, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("notification.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification.handler")
	}
	return &Handler{repo: repo, logger: l}
}

func (h *Handler) ListUnread(c *gin.Context) {
	employeeID := c.GetString("employee_id")

	items, err := h.repo.ListUnread(c.Request.Context(), employeeID)
	if err != nil {
		h.logger.Error("list unread notifications failed",
			zap.String("employee_id", employeeID), zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to fetch notifications", nil)
		return
	}

	response.Success(c, http.StatusOK, items, nil)
}

func (h *Handler) MarkRead(c *gin.Context) {
	employeeID := c.GetString("employee_id")

	if err := h.repo.MarkRead(c.Request.Context(), employeeID); err != nil {
		h.logger.Error("mark notifications read failed",
			zap.String("employee_id", employeeID), zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to update notifications", nil)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"status": StatusRead}, nil)
}
