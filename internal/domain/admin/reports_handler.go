package admin

import (
	"net/http"

	"github.com/vrroom/booking-bff/internal/pkg/response"
	"github.com/vrroom/booking-bff/internal/pkg/validator"
)

// BookingsReport handles GET /admin/reports/bookings?from=&to=&status=
func (h *Handler) BookingsReport(w http.ResponseWriter, r *http.Request) {
	q := ReportQuery{
		From:   r.URL.Query().Get("from"),
		To:     r.URL.Query().Get("to"),
		Status: r.URL.Query().Get("status"),
	}
	if errs := validator.Validate(&q); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	report, err := h.service.BookingsReport(r.Context(), q)
	if err != nil {
		writeBackendError(w, r, err, "Bookings report failed")
		return
	}

	response.OK(w, report)
}
