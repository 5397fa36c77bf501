package server

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gemini-observatory/backend/internal/execution"
	"gemini-observatory/backend/internal/logging"
	"gemini-observatory/backend/internal/metrics"
	"gemini-observatory/backend/internal/security"
)

const planJSON = `{
	"creator": "Dr. Cecilia Payne", "submitter": "Dr. Cecilia Payne", "funding": 1500,
	"objective": "Spectra of the Crux stars.", "star_system": "Crux",
	"schedule_start": "2026-12-01T01:00:00Z", "schedule_end": "2026-12-01T05:00:00Z",
	"telescope_location": "Chile", "file_type": "PNG", "file_quality": "Low", "image_mode": "Color",
	"exposure": 20, "contrast": 20, "brightness": 20, "saturation": 20
}`

const programJSON = `{
	"calibration_unit": "Argon", "light_type": "CerroPachonSkyEmission",
	"fold_mirror_type": "CASSEGRAIN_FOCUS", "teleposition_degree": 45, "teleposition_direction": "North"
}`

type client struct {
	t     *testing.T
	app   *App
	token string
}

func (c client) do(method, path, body string) *httptest.ResponseRecorder {
	c.t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	rec := httptest.NewRecorder()
	c.app.Router.ServeHTTP(rec, req)
	return rec
}

func (c client) decode(rec *httptest.ResponseRecorder, v any) {
	c.t.Helper()
	require.NoError(c.t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	tokens, err := security.NewTestTokenProvider()
	require.NoError(t, err)
	ctx := context.Background()
	app, err := NewApp(ctx, Backends{}, Options{
		Tokens:      tokens,
		BcryptCost:  4,
		Execution:   execution.Config{Workers: 1, FrameInterval: 10 * time.Millisecond},
		CORSOrigins: []string{"http://localhost:3000"},
		Metrics:     metrics.New(),
		Log:         logging.Discard(),
	})
	require.NoError(t, err)
	_, err = app.Stars.Seed(ctx)
	require.NoError(t, err)
	_, err = app.Auth.EnsureAdmin(ctx, "admin", "observatory-admin")
	require.NoError(t, err)
	return app
}

func login(t *testing.T, app *App, username, password string) client {
	t.Helper()
	anon := client{t: t, app: app}
	rec := anon.do(http.MethodPost, "/api/v1/auth/login", `{"username":"`+username+`","password":"`+password+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var tok struct {
		AccessToken string `json:"access_token"`
	}
	anon.decode(rec, &tok)
	return client{t: t, app: app, token: tok.AccessToken}
}

func TestApp_HealthAndMetrics(t *testing.T) {
	app := newTestApp(t)
	anon := client{t: t, app: app}
	assert.Equal(t, http.StatusOK, anon.do(http.MethodGet, "/healthz", "").Code)
	assert.Equal(t, http.StatusOK, anon.do(http.MethodGet, "/readyz", "").Code)
	rec := anon.do(http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "gemini_http_requests_total")
}

func TestApp_Authentication(t *testing.T) {
	app := newTestApp(t)
	anon := client{t: t, app: app}
	assert.Equal(t, http.StatusUnauthorized, anon.do(http.MethodGet, "/api/v1/plans", "").Code)
	assert.Equal(t, http.StatusUnauthorized,
		anon.do(http.MethodPost, "/api/v1/auth/login", `{"username":"admin","password":"wrong-password"}`).Code)

	admin := login(t, app, "admin", "observatory-admin")
	rec := admin.do(http.MethodGet, "/api/v1/users/me", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username":"admin"`)

	require.Equal(t, http.StatusNoContent, admin.do(http.MethodPost, "/api/v1/auth/logout", "").Code)
	assert.Equal(t, http.StatusUnauthorized, admin.do(http.MethodGet, "/api/v1/users/me", "").Code)
}

func TestApp_RoleEnforcement(t *testing.T) {
	app := newTestApp(t)
	admin := login(t, app, "admin", "observatory-admin")
	rec := admin.do(http.MethodPost, "/api/v1/users",
		`{"username":"hubble","password":"andromeda-1924","display_name":"Edwin Hubble","role":"astronomer"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	astro := login(t, app, "hubble", "andromeda-1924")
	assert.Equal(t, http.StatusForbidden, astro.do(http.MethodGet, "/api/v1/audit-logs", "").Code)
	assert.Equal(t, http.StatusForbidden, astro.do(http.MethodGet, "/api/v1/users", "").Code)
	assert.Equal(t, http.StatusOK, astro.do(http.MethodGet, "/api/v1/star-systems", "").Code)

	rec = astro.do(http.MethodPost, "/api/v1/plans", planJSON)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var plan struct {
		ID string `json:"id"`
	}
	astro.decode(rec, &plan)
	assert.Equal(t, http.StatusForbidden, astro.do(http.MethodPost, "/api/v1/plans/"+plan.ID+"/validate", "").Code)

	rec = admin.do(http.MethodGet, "/api/v1/audit-logs?limit=10", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"resource":"plan"`)
	assert.Contains(t, rec.Body.String(), `"resource":"user"`)
}

func TestApp_ObservationWorkflow(t *testing.T) {
	app := newTestApp(t)
	admin := login(t, app, "admin", "observatory-admin")

	rec := admin.do(http.MethodPost, "/api/v1/plans", planJSON)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var plan struct {
		ID string `json:"id"`
	}
	admin.decode(rec, &plan)

	rec = admin.do(http.MethodPost, "/api/v1/plans/"+plan.ID+"/program", programJSON)
	require.Equal(t, http.StatusConflict, rec.Code, "unvalidated plans cannot be submitted")

	require.Equal(t, http.StatusOK, admin.do(http.MethodPost, "/api/v1/plans/"+plan.ID+"/validate", "").Code)

	rec = admin.do(http.MethodPost, "/api/v1/plans/"+plan.ID+"/program", programJSON)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var program struct {
		ID            string `json:"id"`
		FramesPlanned int    `json:"frames_planned"`
	}
	admin.decode(rec, &program)
	require.Positive(t, program.FramesPlanned)
	base := "/api/v1/programs/" + program.ID

	rec = admin.do(http.MethodPost, base+"/execute", `{"mode":"interactive"}`)
	require.Equal(t, http.StatusConflict, rec.Code, "pending programs cannot execute")

	require.Equal(t, http.StatusOK, admin.do(http.MethodPost, base+"/approve", "").Code)
	require.Equal(t, http.StatusAccepted, admin.do(http.MethodPost, base+"/execute", `{"mode":"interactive"}`).Code)

	for i := 0; i < program.FramesPlanned; i++ {
		rec = admin.do(http.MethodPost, base+"/frames", "")
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec = admin.do(http.MethodGet, base+"/progress", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var snap struct {
		Status  string  `json:"status"`
		Percent float64 `json:"percent"`
	}
	admin.decode(rec, &snap)
	assert.Equal(t, "Complete", snap.Status)
	assert.InDelta(t, 100, snap.Percent, 0.001)

	rec = admin.do(http.MethodGet, base+"/observations", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Observations []struct {
			ID string `json:"id"`
		} `json:"observations"`
	}
	admin.decode(rec, &list)
	require.Len(t, list.Observations, program.FramesPlanned)

	rec = admin.do(http.MethodGet, "/api/v1/observations/"+list.Observations[0].ID+"/content", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get("X-Checksum-Sha256"))
}
