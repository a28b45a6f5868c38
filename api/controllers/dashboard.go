package controllers

import (
	"net/http"

	"github.com/hijabina/hijabina-backend/api/responses"
	"github.com/hijabina/hijabina-backend/internal/dashboard"
	"github.com/hijabina/hijabina-backend/pkg/enums"
	pkgerrors "github.com/hijabina/hijabina-backend/pkg/errors"
	"github.com/hijabina/hijabina-backend/pkg/logger"
)

func AdminDashboardStats(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := svc.Stats(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}

func AdminCustomers(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customers, err := svc.Customers(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"customers": customers})
	}
}

// AdminReport builds the sales report for ?period=today|week|month|year.
func AdminReport(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		period, err := enums.ParseReportPeriod(r.URL.Query().Get("period"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "Periode laporan tidak valid"))
			return
		}
		report, err := svc.Report(r.Context(), period)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}
