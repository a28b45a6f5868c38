package controllers

import (
	"context"
	"net/http"

	"github.com/hijabina/hijabina-backend/api/responses"
	"github.com/hijabina/hijabina-backend/api/validators"
	"github.com/hijabina/hijabina-backend/internal/settings"
	"github.com/hijabina/hijabina-backend/pkg/logger"
)

type StoreSettings interface {
	Get(ctx context.Context) (*settings.Settings, error)
	Save(ctx context.Context, patch settings.Patch) (*settings.Settings, error)
}

func AdminSettingsGet(svc StoreSettings, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		current, err := svc.Get(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, current)
	}
}

// AdminSettingsSave merges the provided fields into the stored settings.
func AdminSettingsSave(svc StoreSettings, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var patch settings.Patch
		if err := validators.DecodeJSONBody(r, &patch); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		saved, err := svc.Save(r.Context(), patch)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, saved)
	}
}
