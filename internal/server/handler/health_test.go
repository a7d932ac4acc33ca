package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seojun-dev/geumbang/internal/domain"
)

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name         string
		snap         domain.PriceSnapshot
		wantPricesOK bool
	}{
		{"populated snapshot", populatedSnapshot(), true},
		{"cold start", domain.PriceSnapshot{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(fakeSnapshots{snap: tt.snap}, testLogger())

			w := httptest.NewRecorder()
			h.HealthCheck(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

			require.Equal(t, http.StatusOK, w.Code, "health always answers 200")

			var body struct {
				Status    string `json:"status"`
				PricesOK  bool   `json:"prices_ok"`
				Timestamp string `json:"timestamp"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, "ok", body.Status)
			assert.Equal(t, tt.wantPricesOK, body.PricesOK)
			assert.NotEmpty(t, body.Timestamp)
		})
	}
}
