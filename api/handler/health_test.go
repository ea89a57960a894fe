package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/fastygo/taskflow/internal/infrastructure/monitor"
)

type fixedStatus monitor.Status

func (f fixedStatus) GetStatus() monitor.Status { return monitor.Status(f) }

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name   string
		status monitor.Status
		want   int
	}{
		{"healthy", monitor.Status{PostgreSQL: true, Redis: true, Outbox: true}, http.StatusOK},
		{"redis down", monitor.Status{PostgreSQL: true, Outbox: true, OutboxSize: 3}, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.status.LastCheck = time.Now()
			h := NewHealthHandler(fixedStatus(tt.status), nil, nil)
			rc := newRequest("GET", "/health", "", "")
			h.Check(rc)
			assert.Equal(t, tt.want, rc.Response.StatusCode())
		})
	}
}
