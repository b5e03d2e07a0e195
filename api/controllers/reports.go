package controllers

import (
	"net/http"
	"time"

	"github.com/angelmondragon/pharmacy-backend/api/responses"
	"github.com/angelmondragon/pharmacy-backend/api/validators"
	"github.com/angelmondragon/pharmacy-backend/internal/reports"
	"github.com/angelmondragon/pharmacy-backend/pkg/logger"
)

func DashboardStats(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("report"))
			return
		}
		stats, err := svc.DashboardStats(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}

func RecentOrders(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("report"))
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", reports.DefaultRecentLimit, 1, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rows, err := svc.RecentOrders(r.Context(), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// SalesReport summarizes completed orders between start_date and end_date,
// both inclusive.
func SalesReport(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("report"))
			return
		}
		from, to, err := reportRange(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		report, err := svc.Sales(r.Context(), from, to)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}

func InventoryReport(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("report"))
			return
		}
		asOf, err := validators.ParseQueryDate(r, "as_of")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var at time.Time
		if asOf != nil {
			at = *asOf
		}
		report, err := svc.Inventory(r.Context(), at)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}

func PrescriptionReport(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("report"))
			return
		}
		from, to, err := reportRange(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		report, err := svc.Prescriptions(r.Context(), from, to)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}

// reportRange leaves missing bounds zero so the service reports them.
func reportRange(r *http.Request) (time.Time, time.Time, error) {
	var from, to time.Time
	start, err := validators.ParseQueryDate(r, "start_date")
	if err != nil {
		return from, to, err
	}
	end, err := validators.ParseQueryDate(r, "end_date")
	if err != nil {
		return from, to, err
	}
	if start != nil {
		from = *start
	}
	if end != nil {
		to = *end
	}
	return from, to, nil
}
