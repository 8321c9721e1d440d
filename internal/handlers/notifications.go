package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h HandlerSet) MyNotifications(c *gin.Context) {
	limit, offset := paging(c)
	unread := c.Query("unread") == "true"

	items, err := h.deps.Notifications.ListByAccount(c.Request.Context(), currentAccount(c).ID, unread, limit, offset)
	if err != nil {
		h.fail(c, err)
		return
	}
	out := make([]notificationResponse, 0, len(items))
	for _, n := range items {
		out = append(out, newNotificationResponse(n))
	}
	c.JSON(http.StatusOK, gin.H{"items": out})
}

func (h HandlerSet) MarkNotificationRead(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		h.badRequest(c, "invalid notification id")
		return
	}
	if err := h.deps.Notifications.MarkRead(c.Request.Context(), id, currentAccount(c).ID); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
