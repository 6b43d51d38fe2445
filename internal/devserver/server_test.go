package devserver

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authdomain "gearhead/internal/auth/domain"
	profiledomain "gearhead/internal/profile/domain"
)

type harness struct {
	t   *testing.T
	dev *Server
	srv *httptest.Server
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dev := New("test-secret")
	srv := httptest.NewServer(dev.Handler())
	t.Cleanup(srv.Close)
	return &harness{t: t, dev: dev, srv: srv}
}

func (h *harness) do(method, path, token string, body interface{}) (*http.Response, []byte) {
	h.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(h.t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, h.srv.URL+path, reader)
	require.NoError(h.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := h.srv.Client().Do(req)
	require.NoError(h.t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(h.t, err)
	return resp, out
}

func (h *harness) signUp(email, password, name string) (idToken, refresh string) {
	h.t.Helper()
	resp, body := h.do(http.MethodPost, "/identitytoolkit/v3/relyingparty/signupNewUser?key=k", "", map[string]string{
		"email": email, "password": password, "displayName": name,
	})
	require.Equal(h.t, http.StatusOK, resp.StatusCode, string(body))

	var out struct {
		IDToken      string `json:"idToken"`
		RefreshToken string `json:"refreshToken"`
	}
	require.NoError(h.t, json.Unmarshal(body, &out))
	return out.IDToken, out.RefreshToken
}

func TestToolkit_RequiresAPIKey(t *testing.T) {
	h := newHarness(t)
	resp, _ := h.do(http.MethodPost, "/identitytoolkit/v3/relyingparty/verifyPassword", "", map[string]string{})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestToolkit_ErrorShape(t *testing.T) {
	h := newHarness(t)
	resp, body := h.do(http.MethodPost, "/identitytoolkit/v3/relyingparty/verifyPassword?key=k", "", map[string]string{
		"email": "nobody@example.com", "password": "abcdef",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var out struct {
		Error struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, 400, out.Error.Code)
	assert.Equal(t, "EMAIL_NOT_FOUND", out.Error.Message)
}

func TestRefreshToken(t *testing.T) {
	h := newHarness(t)
	_, refresh := h.signUp("jane@example.com", "abcdef", "Jane")

	form := url.Values{"grant_type": {"refresh_token"}, "refresh_token": {refresh}}
	resp, err := h.srv.Client().PostForm(h.srv.URL+"/v1/token?key=k", form)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.NotEmpty(t, out["id_token"])
	assert.Equal(t, out["id_token"], out["access_token"])
	assert.Equal(t, "3600", out["expires_in"])

	form.Set("refresh_token", "unknown")
	bad, err := h.srv.Client().PostForm(h.srv.URL+"/v1/token?key=k", form)
	require.NoError(t, err)
	bad.Body.Close()
	assert.Equal(t, http.StatusBadRequest, bad.StatusCode)
}

func TestAuthMiddleware(t *testing.T) {
	h := newHarness(t)

	resp, body := h.do(http.MethodPost, "/users/sync", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, string(body), `"message"`)

	resp, _ = h.do(http.MethodPost, "/users/sync", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	h.dev.SetTokenTTL(-time.Minute)
	expired, _ := h.signUp("old@example.com", "abcdef", "Old")
	resp, _ = h.do(http.MethodPost, "/users/sync", expired, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCreateUserThenSyncLinksAccount(t *testing.T) {
	h := newHarness(t)
	token, _ := h.signUp("jane@example.com", "abcdef", "Jane")

	resp, body := h.do(http.MethodPost, "/users", "", map[string]string{"name": " Jane ", "email": "jane@example.com"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var created authdomain.SyncedUser
	require.NoError(t, json.Unmarshal(body, &created))

	resp, _ = h.do(http.MethodPost, "/users", "", map[string]string{"name": "Jane", "email": "jane@example.com"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, body = h.do(http.MethodPost, "/users/sync", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var synced authdomain.SyncedUser
	require.NoError(t, json.Unmarshal(body, &synced))
	assert.Equal(t, created.ID, synced.ID)
	assert.Equal(t, "Jane", synced.Name)
	assert.NotEmpty(t, synced.ExternalAuthID)
	assert.True(t, synced.IsOnline)
	assert.Nil(t, synced.AvatarURL)
}

func TestProfileLifecycle(t *testing.T) {
	h := newHarness(t)
	token, _ := h.signUp("jane@example.com", "abcdef", "Jane")
	_, body := h.do(http.MethodPost, "/users/sync", token, nil)
	var user authdomain.SyncedUser
	require.NoError(t, json.Unmarshal(body, &user))

	resp, body := h.do(http.MethodPatch, "/users/"+user.ID, token, map[string]string{"name": "  Jane D ", "bio": " V8 enjoyer "})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var profile profiledomain.Profile
	require.NoError(t, json.Unmarshal(body, &profile))
	assert.Equal(t, "Jane D", profile.Name)
	assert.Equal(t, "V8 enjoyer", profile.Bio)

	resp, _ = h.do(http.MethodPost, "/garage/"+user.ExternalAuthID, token, map[string]interface{}{"brand": "VW", "model": "Gol", "year": 1996})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = h.do(http.MethodPost, "/garage/someone-else", token, map[string]interface{}{"brand": "VW", "model": "Gol"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = h.do(http.MethodPost, "/events", token, map[string]interface{}{
		"title": "Encontro", "eventDate": "2026-11-01T20:00:00Z",
		"address": map[string]string{"city": "Curitiba", "state": "PR"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	_, body = h.do(http.MethodGet, "/users/"+user.ID, token, nil)
	require.NoError(t, json.Unmarshal(body, &profile))
	assert.Equal(t, 1, profile.Stats.TotalCars)
	assert.Equal(t, 1, profile.Stats.TotalEvents)
	require.Len(t, profile.Garage, 1)
	assert.Equal(t, "Gol", profile.Garage[0].Model)

	resp, _ = h.do(http.MethodGet, "/users/missing", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUploadAvatarServesMedia(t *testing.T) {
	h := newHarness(t)
	token, _ := h.signUp("jane@example.com", "abcdef", "Jane")
	_, body := h.do(http.MethodPost, "/users/sync", token, nil)
	var user authdomain.SyncedUser
	require.NoError(t, json.Unmarshal(body, &user))

	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	part, err := w.CreateFormFile("file", "me.png")
	require.NoError(t, err)
	png := []byte("\x89PNG\r\n\x1a\nfake")
	_, _ = part.Write(png)
	require.NoError(t, w.Close())

	req, err := http.NewRequest(http.MethodPost, h.srv.URL+"/users/update-picture/"+user.ID, buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := h.srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var profile profiledomain.Profile
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&profile))
	require.NotNil(t, profile.AvatarURL)
	assert.True(t, strings.HasSuffix(*profile.AvatarURL, ".png"))

	media, err := h.srv.Client().Get(*profile.AvatarURL)
	require.NoError(t, err)
	defer media.Body.Close()
	data, _ := io.ReadAll(media.Body)
	assert.Equal(t, png, data)
	assert.Equal(t, "image/png", media.Header.Get("Content-Type"))
}

func TestFailInjectsStatus(t *testing.T) {
	h := newHarness(t)
	token, _ := h.signUp("jane@example.com", "abcdef", "Jane")

	h.dev.Fail(http.MethodPost, "/users/sync", http.StatusInternalServerError)
	resp, body := h.do(http.MethodPost, "/users/sync", token, nil)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.JSONEq(t, `{"message":"injected failure"}`, string(body))

	h.dev.ClearFaults()
	resp, _ = h.do(http.MethodPost, "/users/sync", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, 2, h.dev.Count(http.MethodPost, "/users/sync"))
	reqs := h.dev.Requests()
	assert.True(t, reqs[len(reqs)-1].Authorized)

	h.dev.ResetRequests()
	assert.Empty(t, h.dev.Requests())
}

func TestCatalogIsAnonymous(t *testing.T) {
	h := newHarness(t)

	resp, body := h.do(http.MethodGet, "/fipe/brands", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var brands []catalogOption
	require.NoError(t, json.Unmarshal(body, &brands))
	assert.Contains(t, brands, catalogOption{Code: "25", Name: "Honda"})

	resp, body = h.do(http.MethodGet, "/fipe/brands/25/models", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "Civic Si 2.0")

	resp, _ = h.do(http.MethodGet, "/fipe/brands/999/models", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
