package report

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/prestamos/internal/collections"
	"github.com/MrJamesThe3rd/prestamos/internal/loan"
	"github.com/MrJamesThe3rd/prestamos/internal/report"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handler struct {
	svc   *report.Service
	clock collections.Clock
}

func NewHandler(svc *report.Service, clock collections.Clock) *Handler {
	return &Handler{svc: svc, clock: clock}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/collections.xlsx", h.collections)
}

// collections buffers the whole workbook before writing any header.
func (h *Handler) collections(w http.ResponseWriter, r *http.Request) {
	asOf := loan.Day(h.clock.Now())

	if s := r.URL.Query().Get("as_of"); s != "" {
		d, err := collections.ParseDate(s)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		asOf = d
	}

	var buf bytes.Buffer
	if err := h.svc.Collections(r.Context(), asOf, &buf); err != nil {
		slog.Error("failed to build collections report", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Filename(asOf)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))

	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("failed to write report", "error", err)
	}
}
