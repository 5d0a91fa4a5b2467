package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ZionTraffic/zion-flux-sub000/internal/conversations/repository"
	"github.com/ZionTraffic/zion-flux-sub000/internal/conversations/service"
	leadshandler "github.com/ZionTraffic/zion-flux-sub000/internal/leads/handler"
	"github.com/ZionTraffic/zion-flux-sub000/platform/logger"
	"github.com/ZionTraffic/zion-flux-sub000/platform/metrics"
	"github.com/ZionTraffic/zion-flux-sub000/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubReader struct{}

func (stubReader) List(context.Context, repository.Range, int) ([]repository.Row, error) {
	phone, tag := "5511900001111", "T3 - Qualificado"
	return []repository.Row{{
		ID:        9,
		Phone:     &phone,
		Tag:       &tag,
		Messages:  []byte(`[{"role":"user","content":"adorei"}]`),
		CreatedAt: time.Date(2025, 3, 2, 12, 0, 0, 0, time.UTC),
	}}, nil
}

func (stubReader) Count(context.Context, repository.Range) (int, error)          { return 1, nil }
func (stubReader) CountQualified(context.Context, repository.Range) (int, error) { return 1, nil }

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := service.New(stubReader{}, time.Time{}, logger.Nop(), metrics.NewNop())
	h := New(svc, validator.New(), 30)

	engine := gin.New()
	h.RegisterRoutes(engine.Group("/tenants/:" + leadshandler.TenantParam))
	return engine
}

func TestListConversations(t *testing.T) {
	engine := newEngine()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/tenants/"+uuid.NewString()+"/conversations?start=2025-03-01&end=2025-03-03", nil)
	engine.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body ListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Conversations, 1)
	assert.Equal(t, "qualified", body.Conversations[0].Status)
	assert.Equal(t, "positive", body.Conversations[0].Sentiment)
	assert.Equal(t, "2025-03-03", body.Window.End)
	assert.InDelta(t, 100.0, body.Stats.ConversionRate, 1e-9)
}

func TestListConversationsRejectsHalfWindow(t *testing.T) {
	engine := newEngine()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/tenants/"+uuid.NewString()+"/conversations?end=2025-03-03", nil)
	engine.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
