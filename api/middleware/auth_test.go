package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	pkgAuth "github.com/wittyvishnu/starfashion-backend/pkg/auth"
	"github.com/wittyvishnu/starfashion-backend/pkg/config"
)

var jwtCfg = config.JWTConfig{
	Secret:            "test-secret",
	Issuer:            "starfashion-test",
	ExpirationMinutes: 60,
}

func TestAuthSeedsUserContext(t *testing.T) {
	userID := uuid.New()
	token, err := pkgAuth.MintAccessToken(jwtCfg, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: userID,
		Email:  "priya@example.com",
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	var gotUserID, gotEmail string
	handler := Auth(jwtCfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = UserIDFromContext(r.Context())
		gotEmail = EmailFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if gotUserID != userID.String() {
		t.Fatalf("user id = %s, want %s", gotUserID, userID)
	}
	if gotEmail != "priya@example.com" {
		t.Fatalf("email = %s", gotEmail)
	}
}

func TestAuthRejectsBadCredentials(t *testing.T) {
	handler := Auth(jwtCfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	cases := []struct {
		name  string
		setup func(r *http.Request)
	}{
		{name: "missing header", setup: func(*http.Request) {}},
		{name: "empty bearer", setup: func(r *http.Request) { r.Header.Set("Authorization", "Bearer ") }},
		{name: "garbage token", setup: func(r *http.Request) { r.Header.Set("Authorization", "Bearer not-a-jwt") }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/orders", nil)
			tc.setup(req)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			if w.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", w.Code)
			}
		})
	}
}

func TestAuthRejectsWrongSecret(t *testing.T) {
	otherCfg := jwtCfg
	otherCfg.Secret = "another-secret"
	token, err := pkgAuth.MintAccessToken(otherCfg, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Email:  "priya@example.com",
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	handler := Auth(jwtCfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))
	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}
