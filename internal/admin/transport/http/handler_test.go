package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"catalogadmin/internal/admin"
	"catalogadmin/internal/admin/service"
	"catalogadmin/internal/upload"
	"catalogadmin/internal/view"
	"catalogadmin/pkg/jwt"
	"catalogadmin/pkg/middleware"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*admin.Admin
}

func (m *memoryRepo) Create(_ context.Context, a *admin.Admin) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if existing.Email == a.Email {
			return admin.ErrEmailTaken
		}
	}
	m.nextID++
	a.ID = m.nextID
	cp := *a
	m.byID[a.ID] = &cp
	return nil
}

func (m *memoryRepo) GetByEmail(_ context.Context, email string) (*admin.Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.byID {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, admin.ErrNotFound
}

func (m *memoryRepo) GetByID(_ context.Context, id int64) (*admin.Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[id]
	if !ok {
		return nil, admin.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memoryRepo) UpdateProfile(_ context.Context, id int64, c admin.ProfileChanges) (*admin.Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[id]
	if !ok {
		return nil, admin.ErrNotFound
	}
	if c.Name != nil {
		a.Name = *c.Name
	}
	if c.Bio != nil {
		a.Bio = *c.Bio
	}
	if c.Picture != nil {
		a.Picture = *c.Picture
	}
	cp := *a
	return &cp, nil
}

type page struct {
	View string         `json:"view"`
	Data map[string]any `json:"data"`
}

type fixture struct {
	repo    *memoryRepo
	tokens  *jwt.Manager
	handler *Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := &memoryRepo{byID: map[int64]*admin.Admin{}}
	tokens, err := jwt.NewManager("test-secret")
	require.NoError(t, err)
	uploads, err := upload.NewStore(t.TempDir(), "/images")
	require.NoError(t, err)

	return &fixture{
		repo:    repo,
		tokens:  tokens,
		handler: NewHandler(service.NewAdminService(repo), tokens, uploads, view.JSON{}, false),
	}
}

func postForm(path string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func withAdmin(req *http.Request, id int64) *http.Request {
	return req.WithContext(context.WithValue(req.Context(), middleware.AdminIDKey, id))
}

func decodePage(t *testing.T, rec *httptest.ResponseRecorder) page {
	t.Helper()
	var p page
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	return p
}

func (f *fixture) register(t *testing.T, email, password string) {
	t.Helper()
	rec := httptest.NewRecorder()
	f.handler.Register(rec, postForm("/register", url.Values{
		"name": {"Ann"}, "email": {email}, "password": {password},
	}))
	require.Equal(t, http.StatusFound, rec.Code, rec.Body.String())
	require.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestRegister_DuplicateRendersError(t *testing.T) {
	f := newFixture(t)
	f.register(t, "ann@example.com", "Abc123")

	rec := httptest.NewRecorder()
	f.handler.Register(rec, postForm("/register", url.Values{
		"name": {"Ann"}, "email": {"ann@example.com"}, "password": {"Abc123"},
	}))

	assert.Equal(t, http.StatusOK, rec.Code)
	p := decodePage(t, rec)
	assert.Equal(t, "register", p.View)
	assert.Equal(t, msgEmailExists, p.Data["errorMessage"])
	assert.Len(t, f.repo.byID, 1)
}

func TestRegister_WeakPassword(t *testing.T) {
	f := newFixture(t)

	rec := httptest.NewRecorder()
	f.handler.Register(rec, postForm("/register", url.Values{
		"name": {"Ann"}, "email": {"ann@example.com"}, "password": {"abcdef"},
	}))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, msgWeakPassword, decodePage(t, rec).Data["errorMessage"])
	assert.Empty(t, f.repo.byID)
}

func TestLogin_Success(t *testing.T) {
	f := newFixture(t)
	f.register(t, "ann@example.com", "Abc123")

	rec := httptest.NewRecorder()
	f.handler.Login(rec, postForm("/login", url.Values{"email": {"ann@example.com"}, "password": {"Abc123"}}))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, middleware.SessionCookie, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	id, err := f.tokens.Verify(cookies[0].Value)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
}

func TestLogin_Rejections(t *testing.T) {
	f := newFixture(t)
	f.register(t, "ann@example.com", "Abc123")

	tests := []struct {
		name     string
		email    string
		password string
		wantMsg  string
	}{
		{"wrong password", "ann@example.com", "Abc124", msgInvalidPassword},
		{"unknown email", "bob@example.com", "Abc123", msgAdminNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i := 0; i < 3; i++ {
				rec := httptest.NewRecorder()
				f.handler.Login(rec, postForm("/login", url.Values{"email": {tt.email}, "password": {tt.password}}))

				assert.Equal(t, http.StatusOK, rec.Code)
				assert.Empty(t, rec.Result().Cookies())
				p := decodePage(t, rec)
				assert.Equal(t, "login", p.View)
				assert.Equal(t, tt.wantMsg, p.Data["errorMessage"])
			}
		})
	}
}

func TestLogout_ClearsCookie(t *testing.T) {
	f := newFixture(t)

	rec := httptest.NewRecorder()
	f.handler.Logout(rec, httptest.NewRequest(http.MethodGet, "/logout", nil))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestProfile_HidesPasswordHash(t *testing.T) {
	f := newFixture(t)
	f.register(t, "ann@example.com", "Abc123")

	rec := httptest.NewRecorder()
	f.handler.Profile(rec, withAdmin(httptest.NewRequest(http.MethodGet, "/profile", nil), 1))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
	assert.NotContains(t, rec.Body.String(), "$2a$")
	p := decodePage(t, rec)
	assert.Equal(t, "profile", p.View)
}

func TestProfile_AdminGone(t *testing.T) {
	f := newFixture(t)

	rec := httptest.NewRecorder()
	f.handler.Dashboard(rec, withAdmin(httptest.NewRequest(http.MethodGet, "/dashboard", nil), 7))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), msgAdminNotFound)
}

func TestUpdateProfile_WithoutPictureKeepsReference(t *testing.T) {
	f := newFixture(t)
	f.register(t, "ann@example.com", "Abc123")
	f.repo.byID[1].Picture = "/images/existing.png"

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("name", "Anna"))
	require.NoError(t, mw.WriteField("bio", "Catalog owner"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/profile", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := httptest.NewRecorder()
	f.handler.UpdateProfile(rec, withAdmin(req, 1))

	assert.Equal(t, http.StatusOK, rec.Code)
	p := decodePage(t, rec)
	assert.Equal(t, msgProfileUpdated, p.Data["successMessage"])

	stored := f.repo.byID[1]
	assert.Equal(t, "Anna", stored.Name)
	assert.Equal(t, "Catalog owner", stored.Bio)
	assert.Equal(t, "/images/existing.png", stored.Picture)
}

func TestUpdateProfile_EmptyNameIgnored(t *testing.T) {
	f := newFixture(t)
	f.register(t, "ann@example.com", "Abc123")

	rec := httptest.NewRecorder()
	f.handler.UpdateProfile(rec, withAdmin(postForm("/profile", url.Values{"name": {""}, "bio": {"hi"}}), 1))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Ann", f.repo.byID[1].Name)
	assert.Equal(t, "hi", f.repo.byID[1].Bio)
}

func TestUpdateProfile_RejectsNonImage(t *testing.T) {
	f := newFixture(t)
	f.register(t, "ann@example.com", "Abc123")

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("picture", "notes.txt")
	require.NoError(t, err)
	_, err = fw.Write([]byte("plain text"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/profile", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := httptest.NewRecorder()
	f.handler.UpdateProfile(rec, withAdmin(req, 1))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, msgNotImage, decodePage(t, rec).Data["errorMessage"])
	assert.Empty(t, f.repo.byID[1].Picture)
}

func TestLoginThenGuardedDashboard(t *testing.T) {
	f := newFixture(t)
	f.register(t, "ann@example.com", "Abc123")

	rec := httptest.NewRecorder()
	f.handler.Login(rec, postForm("/login", url.Values{"email": {"ann@example.com"}, "password": {"Abc123"}}))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	guarded := middleware.JWTAuth(f.tokens, false)(http.HandlerFunc(f.handler.Dashboard))

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	guarded.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "dashboard", decodePage(t, rec).View)

	expired := f.tokens.WithClock(func() time.Time { return time.Now().Add(61 * time.Minute) })
	guarded = middleware.JWTAuth(expired, false)(http.HandlerFunc(f.handler.Dashboard))
	rec = httptest.NewRecorder()
	guarded.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}
