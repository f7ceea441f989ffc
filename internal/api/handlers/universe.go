package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cachewarden/cachewarden/internal/api/models"
)

// Universe godoc
// @Summary Dump the answer index
// @Description Returns every Answer currently tracked by the index, as a flat JSON array.
// @Tags universe
// @Produce json
// @Success 200 {array} models.Answer
// @Router /universe [get]
func (h *Handler) Universe(c *gin.Context) {
	snapshot := h.idx.Snapshot()
	out := make([]models.Answer, 0, len(snapshot))
	for _, a := range snapshot {
		out = append(out, models.Answer{
			DomainName: a.DomainName,
			RecordType: a.RecordType.String(),
			Class:      a.Class.String(),
			TTL:        a.TTL,
			ObservedAt: a.ObservedAt,
			ExpiresAt:  a.ExpiresAt,
		})
	}
	c.JSON(http.StatusOK, out)
}
