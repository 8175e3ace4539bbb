package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/garnizeh/jobboard/api"
	"github.com/garnizeh/jobboard/internal/account"
	"github.com/garnizeh/jobboard/pkg/models"
	"github.com/garnizeh/jobboard/pkg/repository/mock"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

func TestAuthHandlers(t *testing.T) {
	secret := "testsecret"
	tokenDur := 1 * time.Hour

	tests := []struct {
		name       string
		path       string
		body       any
		prepare    func(m *mock.Mocks)
		wantStatus int
		wantCode   string
	}{
		{
			name:       "Signup_InvalidRequest",
			path:       "/signup",
			body:       "not a json",
			wantStatus: http.StatusBadRequest,
			wantCode:   "validation",
		},
		{
			name:       "Signup_MissingFields_Name",
			path:       "/signup",
			body:       map[string]string{"email": "alice@example.com", "password": "s3cret"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "validation",
		},
		{
			name:       "Signup_MissingFields_Email",
			path:       "/signup",
			body:       map[string]string{"name": "Alice", "password": "s3cret"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "validation",
		},
		{
			name:       "Signup_AdminRoleRefused",
			path:       "/signup",
			body:       map[string]string{"name": "Alice", "email": "alice@example.com", "password": "s3cret", "role": "admin"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "validation",
		},
		{
			name:       "Signup_Success",
			path:       "/signup",
			body:       map[string]string{"name": "Alice", "email": "alice@example.com", "password": "s3cret", "role": "employer"},
			wantStatus: http.StatusCreated,
		},
		{
			name: "Signup_DuplicateEmail",
			path: "/signup",
			body: map[string]string{"name": "Dup", "email": "dup@example.com", "password": "s3cret"},
			prepare: func(m *mock.Mocks) {
				m.Users.Add(models.User{Email: "dup@example.com", Role: models.RoleJobseeker})
			},
			wantStatus: http.StatusConflict,
			wantCode:   "duplicate",
		},
		{
			name: "Signup_StoreFailure",
			path: "/signup",
			body: map[string]string{"name": "Err", "email": "err@example.com", "password": "s3cret"},
			prepare: func(m *mock.Mocks) {
				m.Users.CreateErr = fmt.Errorf("disk I/O error")
			},
			wantStatus: http.StatusInternalServerError,
			wantCode:   "internal",
		},
		{
			name:       "Signin_InvalidRequest",
			path:       "/signin",
			body:       "not a json",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Signin_MissingFields_Password",
			path:       "/signin",
			body:       map[string]string{"email": "missing@example.com"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Signin_MissingUser",
			path:       "/signin",
			body:       map[string]string{"email": "missing@example.com", "password": "nop"},
			wantStatus: http.StatusUnauthorized,
			wantCode:   "unauthorized",
		},
		{
			name: "Signin_Success",
			path: "/signin",
			body: map[string]string{"email": "bob@example.com", "password": "hunter2"},
			prepare: func(m *mock.Mocks) {
				hash, _ := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
				m.Users.Add(models.User{ID: 2, Email: "bob@example.com", PasswordHash: string(hash), Role: models.RoleJobseeker})
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "Signin_WrongPassword",
			path: "/signin",
			body: map[string]string{"email": "c@example.com", "password": "wrongpw"},
			prepare: func(m *mock.Mocks) {
				hash, _ := bcrypt.GenerateFromPassword([]byte("rightpw"), bcrypt.MinCost)
				m.Users.Add(models.User{ID: 3, Email: "c@example.com", PasswordHash: string(hash), Role: models.RoleJobseeker})
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "Signout_OK",
			path:       "/signout",
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mocks := mock.NewMocks()
			if tt.prepare != nil {
				tt.prepare(mocks)
			}
			handler := api.NewAuthHandler(account.NewService(mocks.Users, nil, nil), secret, tokenDur)

			var bodyReader io.Reader
			if tt.body != nil {
				var b []byte
				if s, ok := tt.body.(string); ok {
					b = []byte(s)
				} else {
					b, _ = json.Marshal(tt.body)
				}
				bodyReader = bytes.NewReader(b)
			}
			req := httptest.NewRequest(http.MethodPost, tt.path, bodyReader)
			w := httptest.NewRecorder()

			switch tt.path {
			case "/signup":
				handler.Signup(w, req)
			case "/signin":
				handler.Signin(w, req)
			case "/signout":
				handler.Signout(w, req)
			default:
				t.Fatalf("unknown path %s", tt.path)
			}

			res := w.Result()
			defer res.Body.Close()
			data, _ := io.ReadAll(res.Body)
			if res.StatusCode != tt.wantStatus {
				t.Fatalf("%s: expected status %d got %d body=%s", tt.name, tt.wantStatus, res.StatusCode, string(data))
			}

			if tt.wantCode != "" {
				var er struct {
					Error string `json:"error"`
				}
				if err := json.Unmarshal(data, &er); err != nil || er.Error != tt.wantCode {
					t.Fatalf("expected error code %q, body=%s", tt.wantCode, string(data))
				}
			}

			if (res.StatusCode == http.StatusOK && tt.path != "/signout") || res.StatusCode == http.StatusCreated {
				var ar struct {
					Token string       `json:"token"`
					User  *models.User `json:"user"`
				}
				if err := json.Unmarshal(data, &ar); err != nil {
					t.Fatalf("unmarshal token: %v", err)
				}
				tok, err := jwt.Parse(ar.Token, func(token *jwt.Token) (any, error) { return []byte(secret), nil })
				if err != nil {
					t.Fatalf("invalid token: %v", err)
				}
				claims, ok := tok.Claims.(jwt.MapClaims)
				if !ok {
					t.Fatalf("unexpected claims type")
				}
				if id, ok := claims["user_id"].(float64); !ok || int64(id) != ar.User.ID {
					t.Fatalf("user_id claim %v does not match user %d", claims["user_id"], ar.User.ID)
				}
				if expF, ok := claims["exp"].(float64); !ok || int64(expF) < time.Now().Unix() {
					t.Fatalf("invalid exp claim")
				}
				if bytes.Contains(data, []byte("password_hash")) {
					t.Fatalf("password hash leaked: %s", string(data))
				}
			}
		})
	}
}
