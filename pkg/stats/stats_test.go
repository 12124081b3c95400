package stats

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/matryer/is"
	"github.com/printnow/portal/pkg/config"
)

func TestMetricsEndpoint(t *testing.T) {
	is := is.New(t)
	_, err := NewStatsServer(context.TODO())
	is.True(err != nil)

	s, err := NewStatsServer(config.WithContext(context.TODO(), config.DefaultConfig()))
	is.NoErr(err)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	is.Equal(rec.Code, http.StatusOK)

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/metrics", nil))
	is.Equal(rec.Code, http.StatusMethodNotAllowed)
}
