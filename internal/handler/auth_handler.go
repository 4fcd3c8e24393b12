package handler

import (
	"encoding/json"
	"net/http"

	"github.com/medup/billing-dashboard-go/internal/domain"
	"github.com/medup/billing-dashboard-go/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Autenticação — POST /api/login, POST /api/logout
// ============================================================

func loginHandler(authSvc *service.AuthService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/login")
		defer span.End()

		var req domain.LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		resp, err := authSvc.Login(ctx, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// logoutHandler is a formality: tokens are stateless, so logout is the
// client discarding its copy.
func logoutHandler(logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "POST /api/logout")
		defer span.End()

		writeJSON(w, http.StatusOK, map[string]string{"message": "Logout realizado com sucesso"})
	}
}
