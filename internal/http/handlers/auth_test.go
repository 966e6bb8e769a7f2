package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/taskpit/taskpit/internal/auth"
	"github.com/taskpit/taskpit/internal/domain/user"
	"github.com/taskpit/taskpit/internal/http/handlers"
	"github.com/taskpit/taskpit/internal/http/middlewares"
	"github.com/taskpit/taskpit/internal/repo/postgres"
	"github.com/taskpit/taskpit/internal/security"
)

// Make sure Gin does not spam the console during the test
func init() {
	gin.SetMode(gin.TestMode)
}

// in-memory stand-in for the users repo
type fakeUsersRepo struct {
	createFn     func(ctx context.Context, email, passwordHash string) (user.User, error)
	getByEmailFn func(ctx context.Context, email string) (user.User, error)
}

func (f *fakeUsersRepo) Create(ctx context.Context, email, passwordHash string) (user.User, error) {
	if f.createFn != nil {
		return f.createFn(ctx, email, passwordHash)
	}

	now := time.Now().UTC()
	return user.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	if f.getByEmailFn != nil {
		return f.getByEmailFn(ctx, email)
	}

	return user.User{}, postgres.ErrUserNotFound
}

func setupRouter(method, path string, h gin.HandlerFunc) *gin.Engine {
	r := gin.New()

	r.Handle(method, path, h)

	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func errorName(t *testing.T, body []byte) string {
	t.Helper()

	var parsed struct {
		Error struct {
			Name    string `json:"name"`
			Message string `json:"message"`
		} `json:"error"`
	}

	if err := json.Unmarshal(body, &parsed); err != nil {
		t.Fatalf("could not parse error body %s: %v", body, err)
	}

	return parsed.Error.Name
}

func newAuthHandler(repo *fakeUsersRepo) *handlers.AuthHandler {
	jwtManager := auth.NewManager("test-secret", time.Hour)
	return handlers.NewAuthHandler(repo, repo, jwtManager)
}

func TestRegister(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		createFn   func(ctx context.Context, email, passwordHash string) (user.User, error)
		wantStatus int
		wantError  string
	}{
		{
			name:       "creates a user",
			body:       `{"email":"alice@example.com","password":"s3cret"}`,
			wantStatus: http.StatusCreated,
		},
		{
			name: "rejects a taken email",
			body: `{"email":"alice@example.com","password":"s3cret"}`,
			createFn: func(ctx context.Context, email, passwordHash string) (user.User, error) {
				return user.User{}, postgres.ErrEmailTaken
			},
			wantStatus: http.StatusUnprocessableEntity,
			wantError:  "EmailAlreadyTaken",
		},
		{
			name:       "rejects a malformed email",
			body:       `{"email":"not-an-email","password":"s3cret"}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "InvalidRequest",
		},
		{
			name:       "rejects a missing password",
			body:       `{"email":"alice@example.com"}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "InvalidRequest",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo := &fakeUsersRepo{createFn: tc.createFn}
			h := newAuthHandler(repo)
			r := setupRouter(http.MethodPost, "/v1/auth/register", h.Register)

			w := doJSON(t, r, http.MethodPost, "/v1/auth/register", tc.body)

			if w.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tc.wantStatus, w.Body.Bytes())
			}

			if tc.wantError != "" {
				if got := errorName(t, w.Body.Bytes()); got != tc.wantError {
					t.Errorf("error name = %q, want %q", got, tc.wantError)
				}
			}
		})
	}
}

func TestRegisterNeverExposesHash(t *testing.T) {
	repo := &fakeUsersRepo{}
	h := newAuthHandler(repo)
	r := setupRouter(http.MethodPost, "/v1/auth/register", h.Register)

	w := doJSON(t, r, http.MethodPost, "/v1/auth/register", `{"email":"alice@example.com","password":"s3cret"}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", w.Code)
	}

	var parsed map[string]map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &parsed); err != nil {
		t.Fatalf("could not parse body: %v", err)
	}

	u := parsed["user"]
	if u["email"] != "alice@example.com" {
		t.Errorf("email = %v, want alice@example.com", u["email"])
	}

	for _, forbidden := range []string{"password", "password_hash", "encrypted_password"} {
		if _, ok := u[forbidden]; ok {
			t.Errorf("response leaks %q", forbidden)
		}
	}
}

func TestLogin(t *testing.T) {
	hash, err := security.HashPassword("s3cret")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}

	now := time.Now().UTC()
	alice := user.User{
		ID:           "u-alice",
		Email:        "alice@example.com",
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	withAlice := func(ctx context.Context, email string) (user.User, error) {
		if email == alice.Email {
			return alice, nil
		}
		return user.User{}, postgres.ErrUserNotFound
	}

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantError  string
	}{
		{
			name:       "issues a token for valid credentials",
			body:       `{"email":"alice@example.com","password":"s3cret"}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "rejects an unknown email",
			body:       `{"email":"nobody@example.com","password":"s3cret"}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantError:  "EmailNotExists",
		},
		{
			name:       "rejects a wrong password",
			body:       `{"email":"alice@example.com","password":"wrong"}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantError:  "IncorrectPassword",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo := &fakeUsersRepo{getByEmailFn: withAlice}
			h := newAuthHandler(repo)
			r := setupRouter(http.MethodPost, "/v1/auth/login", h.Login)

			w := doJSON(t, r, http.MethodPost, "/v1/auth/login", tc.body)

			if w.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tc.wantStatus, w.Body.Bytes())
			}

			if tc.wantError != "" {
				if got := errorName(t, w.Body.Bytes()); got != tc.wantError {
					t.Errorf("error name = %q, want %q", got, tc.wantError)
				}
				return
			}

			var parsed struct {
				AccessToken string `json:"access_token"`
				User        struct {
					ID string `json:"id"`
				} `json:"user"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &parsed); err != nil {
				t.Fatalf("could not parse body: %v", err)
			}

			if parsed.AccessToken == "" {
				t.Fatal("expected an access_token in the response")
			}
			if parsed.User.ID != alice.ID {
				t.Errorf("user id = %q, want %q", parsed.User.ID, alice.ID)
			}

			// the issued token must verify against the same secret
			claims, err := auth.NewManager("test-secret", time.Hour).VerifyAccessToken(parsed.AccessToken)
			if err != nil {
				t.Fatalf("issued token did not verify: %v", err)
			}
			if claims.UserID != alice.ID {
				t.Errorf("token user id = %q, want %q", claims.UserID, alice.ID)
			}
		})
	}
}

func TestWhoami(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	alice := user.User{
		ID:           "u-alice",
		Email:        "alice@example.com",
		PasswordHash: "some-bcrypt-digest",
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	jwtManager := auth.NewManager("test-secret", time.Hour)

	loader := userLoaderFunc(func(ctx context.Context, id string) (user.User, error) {
		if id == alice.ID {
			return alice, nil
		}
		return user.User{}, postgres.ErrUserNotFound
	})

	gate := middlewares.NewAuthMiddleware(jwtManager, loader)
	h := newAuthHandler(&fakeUsersRepo{})

	r := gin.New()
	r.GET("/v1/auth/whoami", gate.RequireAuth(), h.Whoami)

	t.Run("returns the projection of the gate-bound user", func(t *testing.T) {
		token, err := jwtManager.GenerateAccessToken(alice)
		if err != nil {
			t.Fatalf("generate failed: %v", err)
		}

		req := httptest.NewRequest(http.MethodGet, "/v1/auth/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+token)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200 (body %s)", w.Code, w.Body.Bytes())
		}

		var parsed map[string]map[string]any
		if err := json.Unmarshal(w.Body.Bytes(), &parsed); err != nil {
			t.Fatalf("could not parse body: %v", err)
		}

		u := parsed["user"]
		if u["id"] != alice.ID {
			t.Errorf("id = %v, want %q", u["id"], alice.ID)
		}
		if u["email"] != alice.Email {
			t.Errorf("email = %v, want %q", u["email"], alice.Email)
		}
		for _, field := range []string{"created_at", "updated_at"} {
			if _, ok := u[field]; !ok {
				t.Errorf("response is missing %q", field)
			}
		}
		for _, forbidden := range []string{"password", "password_hash", "encrypted_password"} {
			if _, ok := u[forbidden]; ok {
				t.Errorf("response leaks %q", forbidden)
			}
		}
	})

	t.Run("rejects a request without a token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/auth/whoami", nil)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", w.Code)
		}
		if got := errorName(t, w.Body.Bytes()); got != "Unauthorized" {
			t.Errorf("error name = %q, want Unauthorized", got)
		}
	})
}
