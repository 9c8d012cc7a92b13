package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func login(t *testing.T, h http.HandlerFunc, username, password string) *httptest.ResponseRecorder {
	t.Helper()
	body := `{"username":"` + username + `","password":"` + password + `"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	w := httptest.NewRecorder()
	h(w, req)
	return w
}

func TestLoginHandler(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	svc := NewAuthService("test-secret")
	accounts := []StaffAccount{
		{Username: "admin", PassHash: string(hash), Role: "admin"},
		{Username: "broken", PassHash: "", Role: "admin"},
	}
	h := LoginHandler(svc, accounts)

	w := login(t, h, "admin", "hunter2")
	if w.Code != http.StatusOK {
		t.Fatalf("valid login: status %d", w.Code)
	}
	var resp struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	claims, err := svc.Parse(resp.AccessToken)
	if err != nil || claims == nil {
		t.Fatalf("parse issued token: %v", err)
	}
	if claims.Sub != "admin" || claims.Role != "admin" {
		t.Fatalf("claims: %+v", claims)
	}

	if w := login(t, h, "admin", "wrong"); w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password: status %d", w.Code)
	}
	// An account with no hash configured can never authenticate.
	if w := login(t, h, "broken", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("empty-hash account: status %d", w.Code)
	}
	if w := login(t, h, "nobody", "hunter2"); w.Code != http.StatusUnauthorized {
		t.Fatalf("unknown user: status %d", w.Code)
	}
}

func TestJWTMiddlewareRejectsBadTokens(t *testing.T) {
	svc := NewAuthService("test-secret")
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	mw := JWTMiddleware(svc)(next)

	req := httptest.NewRequest(http.MethodGet, "/tests", nil)
	w := httptest.NewRecorder()
	mw.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("missing header: status %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/tests", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	w = httptest.NewRecorder()
	mw.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token: status %d", w.Code)
	}

	tok, err := svc.IssueJWT("admin", "admin")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	req = httptest.NewRequest(http.MethodGet, "/tests", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w = httptest.NewRecorder()
	mw.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("valid token: status %d", w.Code)
	}
}
