package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"booking-system/internal/api/interfaces"
	"booking-system/internal/api/models"
	"booking-system/internal/database/repositories"

	"github.com/gin-gonic/gin"
)

// GetActivity lists the caller's own audit trail: logins, bookings, cancellations and account changes
func GetActivity(services interfaces.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := repositories.AuditFilter{
			Action: strings.ToUpper(c.Query("action")),
			UserID: strconv.FormatInt(currentUserID(c), 10),
			Limit:  queryInt(c, "limit", 50, 1000),
			Offset: queryInt(c, "offset", 0, 0),
		}

		for name, target := range map[string]**time.Time{"start_time": &filter.StartTime, "end_time": &filter.EndTime} {
			raw := c.Query(name)
			if raw == "" {
				continue
			}
			t, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				respondError(c, models.BadRequest("Invalid "+name).WithField(name, "expected RFC3339"))
				return
			}
			*target = &t
		}

		logs, err := services.AuditLogRepository().GetAuditLogs(c.Request.Context(), filter)
		if err != nil {
			fail(c, services, err, "retrieve activity")
			return
		}

		respond(c, http.StatusOK, "", gin.H{
			"logs":   logs,
			"limit":  filter.Limit,
			"offset": filter.Offset,
			"total":  len(logs),
		})
	}
}
