package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T) string {
	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestInstrument_LabelsByRoutePattern(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Instrument())
	router.GET("/stores/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, id := range []string{"1", "2"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stores/"+id, nil))
		require.Equal(t, http.StatusOK, w.Code)
	}

	body := scrape(t)
	assert.Contains(t, body, `booking_http_requests_total{method="GET",path="/stores/:id",status="200"} 2`)
	assert.NotContains(t, body, `path="/stores/1"`)
}

func TestRecordAppointments(t *testing.T) {
	RecordAppointments("no_show", 3)
	RecordAppointments("no_show", 0)

	assert.Contains(t, scrape(t), `booking_appointments_transitions_total{status="no_show"} 3`)
}

func TestRecordChatMessage(t *testing.T) {
	RecordChatMessage()
	assert.Contains(t, scrape(t), "booking_chat_messages_total")
}
