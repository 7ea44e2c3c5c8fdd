package controllers

import (
	"net/http"

	"github.com/Uptivity/justsell-pos-sub002/api/middleware"
	"github.com/Uptivity/justsell-pos-sub002/api/responses"
	"github.com/Uptivity/justsell-pos-sub002/api/validators"
	"github.com/Uptivity/justsell-pos-sub002/internal/auth"
	pkgerrors "github.com/Uptivity/justsell-pos-sub002/pkg/errors"
	"github.com/Uptivity/justsell-pos-sub002/pkg/logger"
)

// AuthLogin wires the employee login endpoint into the HTTP layer.
func AuthLogin(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var body auth.LoginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.Header().Set("X-JustSell-Token", result.AccessToken)
		responses.WriteSuccess(w, result)
	}
}

// DevBootstrap creates a store and its first admin. Only mounted in dev.
func DevBootstrap(svc auth.BootstrapService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "bootstrap service unavailable"))
			return
		}

		var body auth.BootstrapRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Bootstrap(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

func identityOrUnauthorized(r *http.Request) (middleware.Identity, error) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		return middleware.Identity{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "Authentication required")
	}
	return id, nil
}
