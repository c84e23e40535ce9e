package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/sidetrack/internal/db"
	"github.com/terraincognita07/sidetrack/internal/offline"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var testNow = time.Date(2026, time.June, 30, 12, 0, 0, 0, time.UTC)

type testAppOptions struct {
	secretKey string
	shell     *offline.Controller
}

func newTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	return newTestAppWithOptions(t, testAppOptions{secretKey: "test-secret-key"})
}

func newTestAppWithOptions(t *testing.T, options testAppOptions) (*fiber.App, *gorm.DB) {
	t.Helper()

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "sidetrack-api-test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("open sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	handler, err := NewHandler(database, Options{
		SecretKey:  options.secretKey,
		AppBaseURL: "https://tracker.example/",
		Shell:      options.shell,
		Now:        func() time.Time { return testNow },
	})
	if err != nil {
		t.Fatalf("init handler: %v", err)
	}
	handler.logins.WithHashCost(bcrypt.MinCost)

	app := fiber.New()
	RegisterRoutes(app, handler)
	return app, database
}

func doJSON(t *testing.T, app *fiber.App, method string, path string, token string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encode body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}
	request := httptest.NewRequest(method, path, reader)
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}

	response, err := app.Test(request, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	return response
}

func decodeJSON(t *testing.T, response *http.Response, target any) {
	t.Helper()
	defer response.Body.Close()
	if err := json.NewDecoder(response.Body).Decode(target); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
}

func readAPIError(t *testing.T, body io.Reader) string {
	t.Helper()

	payload := map[string]any{}
	raw, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("decode response body %q: %v", raw, err)
	}
	message, _ := payload["error"].(string)
	return message
}

func assertStatus(t *testing.T, response *http.Response, want int) {
	t.Helper()
	if response.StatusCode != want {
		raw, _ := io.ReadAll(response.Body)
		t.Fatalf("expected status %d, got %d: %s", want, response.StatusCode, raw)
	}
}

func responseCookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, cookie := range cookies {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

type signedInUser struct {
	Token       string
	UserID      string
	HouseholdID string
	Role        string
}

// signIn runs the request-code and verify-code flow using the code the server
// returns when no mailer is configured.
func signIn(t *testing.T, app *fiber.App, email string) signedInUser {
	t.Helper()

	requested := doJSON(t, app, http.MethodPost, "/api/auth/request-code", "", map[string]string{"email": email})
	assertStatus(t, requested, http.StatusOK)
	delivery := struct {
		DevCode string `json:"dev_code"`
	}{}
	decodeJSON(t, requested, &delivery)
	if len(delivery.DevCode) != 6 {
		t.Fatalf("expected six digit dev code, got %q", delivery.DevCode)
	}

	verified := doJSON(t, app, http.MethodPost, "/api/auth/verify-code", "", map[string]string{
		"email": email,
		"code":  delivery.DevCode,
	})
	assertStatus(t, verified, http.StatusOK)
	payload := struct {
		AccessToken string `json:"access_token"`
		Session     struct {
			UserID      string `json:"user_id"`
			HouseholdID string `json:"household_id"`
			Role        string `json:"role"`
		} `json:"session"`
	}{}
	decodeJSON(t, verified, &payload)
	if payload.AccessToken == "" {
		t.Fatal("expected access token")
	}

	return signedInUser{
		Token:       payload.AccessToken,
		UserID:      payload.Session.UserID,
		HouseholdID: payload.Session.HouseholdID,
		Role:        payload.Session.Role,
	}
}

// invitePartner signs in a patient, invites partnerEmail and signs the partner
// in, which claims the invite.
func invitePartner(t *testing.T, app *fiber.App, patientEmail string, partnerEmail string) (signedInUser, signedInUser) {
	t.Helper()

	patient := signIn(t, app, patientEmail)
	invited := doJSON(t, app, http.MethodPost, "/api/households/invites", patient.Token, map[string]string{"email": partnerEmail})
	assertStatus(t, invited, http.StatusCreated)
	invited.Body.Close()

	partner := signIn(t, app, partnerEmail)
	return patient, partner
}

type stubShellNetwork struct {
	mu     sync.Mutex
	online bool
	assets map[string]offline.Response
}

func newStubShellNetwork() *stubShellNetwork {
	assets := make(map[string]offline.Response, len(offline.ShellAssets))
	for _, asset := range offline.ShellAssets {
		assets[asset] = offline.Response{Status: 200, ContentType: "text/html; charset=utf-8", Body: []byte("shell " + asset)}
	}
	return &stubShellNetwork{online: true, assets: assets}
}

func (network *stubShellNetwork) Fetch(_ context.Context, request offline.Request) (offline.Response, error) {
	network.mu.Lock()
	defer network.mu.Unlock()
	if !network.online {
		return offline.Response{}, errors.New("dial tcp: connection refused")
	}
	path := request.Path
	if index := strings.IndexByte(path, '?'); index >= 0 {
		path = path[:index]
	}
	response, ok := network.assets[path]
	if !ok {
		return offline.Response{Status: 404, Body: []byte("missing")}, nil
	}
	return response, nil
}

func (network *stubShellNetwork) setOnline(online bool) {
	network.mu.Lock()
	defer network.mu.Unlock()
	network.online = online
}
