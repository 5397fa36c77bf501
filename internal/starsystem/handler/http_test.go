package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gemini-observatory/backend/internal/logging"
	"gemini-observatory/backend/internal/starsystem/cache"
	"gemini-observatory/backend/internal/starsystem/domain"
	"gemini-observatory/backend/internal/starsystem/repository"
	"gemini-observatory/backend/internal/starsystem/service"
	"gemini-observatory/backend/internal/telescope"
)

func init() { gin.SetMode(gin.TestMode) }

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	svc := service.NewService(repository.NewMemoryRepository(), cache.NewMemoryCache(0), logging.Discard())
	_, err := svc.Seed(context.Background())
	require.NoError(t, err)
	scope, err := telescope.New()
	require.NoError(t, err)
	h := NewHandler(svc, scope)

	r := gin.New()
	r.GET("/star-systems", h.List)
	r.GET("/star-systems/:name", h.Get)
	r.GET("/telescope/sites", h.Sites)
	return r
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func names(t *testing.T, rec *httptest.ResponseRecorder) []string {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body struct {
		StarSystems []domain.StarSystem `json:"star_systems"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	out := make([]string, len(body.StarSystems))
	for i, s := range body.StarSystems {
		out[i] = s.Name
	}
	return out
}

func TestList(t *testing.T) {
	r := newRouter(t)
	assert.Len(t, names(t, get(r, "/star-systems")), len(domain.Catalog))

	hawaii := names(t, get(r, "/star-systems?site=Hawaii"))
	assert.Contains(t, hawaii, "Ursa Minor")
	assert.NotContains(t, hawaii, "Octans")

	chile := names(t, get(r, "/star-systems?latitude=-30.24"))
	assert.Contains(t, chile, "Octans")
	assert.NotContains(t, chile, "Ursa Minor")

	assert.Equal(t, http.StatusBadRequest, get(r, "/star-systems?latitude=north").Code)
	assert.Equal(t, http.StatusBadRequest, get(r, "/star-systems?site=Mars").Code)
}

func TestGet(t *testing.T) {
	r := newRouter(t)
	rec := get(r, "/star-systems/crux")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"Crux"`)
	assert.Equal(t, http.StatusNotFound, get(r, "/star-systems/Nemesis").Code)
}

func TestSites(t *testing.T) {
	rec := get(newRouter(t), "/telescope/sites")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Mauna Kea")
	assert.Contains(t, rec.Body.String(), "Cerro Pach")
}
