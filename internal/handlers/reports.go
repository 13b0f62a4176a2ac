package handlers

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"github.com/diewo77/go-sales/httpx"
	"github.com/diewo77/go-sales/i18n"
	"github.com/diewo77/go-sales/internal/report"
	"github.com/diewo77/go-sales/internal/services"
)

// DefaultWindow is used when ?window= is absent.
const DefaultWindow = 30

type ReportHandler struct {
	responder
	reader *services.Reader
	loc    *time.Location
	now    func() time.Time
}

func NewReportHandler(reader *services.Reader, loc *time.Location) *ReportHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &ReportHandler{reader: reader, loc: loc, now: time.Now}
}

func (h *ReportHandler) build(w http.ResponseWriter, r *http.Request) (report.Report, time.Time, bool) {
	window := httpx.QueryInt(r, "window", DefaultWindow)
	if !report.ValidWindow(window) {
		h.errorCode(w, r, http.StatusBadRequest, "invalid_window", map[string]any{"allowed": report.Windows})
		return report.Report{}, time.Time{}, false
	}
	now := h.now()
	details, err := h.reader.ListWithItems(r.Context(), report.Since(window, now))
	if err != nil {
		h.fail(w, r, err)
		return report.Report{}, time.Time{}, false
	}
	sales := report.FromDetails(details, i18n.T(lang(r), "unknown_customer"))
	return report.Build(sales, window, now, h.loc), now, true
}

func (h *ReportHandler) Show(w http.ResponseWriter, r *http.Request) {
	rep, _, ok := h.build(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, rep)
}

// Export downloads the report as CSV.
func (h *ReportHandler) Export(w http.ResponseWriter, r *http.Request) {
	rep, now, ok := h.build(w, r)
	if !ok {
		return
	}
	local := now.In(h.loc)
	var buf bytes.Buffer
	if err := report.WriteCSV(&buf, rep, local); err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+report.Filename(local)+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

type DashboardHandler struct {
	responder
	svc *services.DashboardService
}

func NewDashboardHandler(svc *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

func (h *DashboardHandler) Show(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	for i := range stats.RecentSales {
		stats.RecentSales[i].CustomerName = customerName(r, stats.RecentSales[i].CustomerName)
	}
	httpx.JSON(w, http.StatusOK, stats)
}
