package main

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Nikhil2261/iot-backend/internal/accounts"
	"github.com/Nikhil2261/iot-backend/pkg/httpx"
)

type contextKey string

const accountContextKey contextKey = "account_id"

func registerAccountRoutes(r chi.Router, svc *accounts.Service) {
	r.Post("/signup", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name     string `json:"name"`
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := httpx.ReadJSON(r, &req); err != nil {
			httpx.WriteError(w, 400, "BAD_JSON", err.Error(), nil)
			return
		}
		if _, err := svc.Signup(r.Context(), req.Name, req.Email, req.Password); err != nil {
			httpx.WriteAppError(w, err)
			return
		}
		httpx.WriteJSON(w, 200, map[string]any{"ok": true, "message": "Signup successful"})
	})

	r.Post("/login", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := httpx.ReadJSON(r, &req); err != nil {
			httpx.WriteError(w, 400, "BAD_JSON", err.Error(), nil)
			return
		}
		token, err := svc.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			httpx.WriteAppError(w, err)
			return
		}
		httpx.WriteJSON(w, 200, map[string]any{"ok": true, "token": token})
	})
}

// sessionAuth validates the app's bearer token and injects the account id
// into the request context for everything behind it.
func sessionAuth(svc *accounts.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := parseBearer(r.Header.Get("Authorization"))
			if !ok {
				httpx.WriteError(w, 401, "UNAUTHORIZED", "missing token", nil)
				return
			}
			accountID, err := svc.VerifyToken(token)
			if err != nil {
				httpx.WriteAppError(w, err)
				return
			}
			ctx := context.WithValue(r.Context(), accountContextKey, accountID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func accountFrom(ctx context.Context) string {
	id, _ := ctx.Value(accountContextKey).(string)
	return id
}

func parseBearer(authorization string) (string, bool) {
	if strings.TrimSpace(authorization) == "" {
		return "", false
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(authorization, prefix) {
		return "", false
	}
	tok := strings.TrimSpace(strings.TrimPrefix(authorization, prefix))
	if tok == "" {
		return "", false
	}
	return tok, true
}
