package http

import (
	"net/http"
	"time"

	"github.com/cmlabs-hris/hris-timesheet-go/internal/domain/report"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/handler/http/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportHandler interface {
	HeatMap(w http.ResponseWriter, r *http.Request)
	Summary(w http.ResponseWriter, r *http.Request)
	TeamSummary(w http.ResponseWriter, r *http.Request)
	ExportTeamSummary(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.ReportService
}

func NewReportHandler(reportService report.ReportService) ReportHandler {
	return &reportHandlerImpl{reportService: reportService}
}

// HeatMap handles GET /reports/heatmap?month=YYYY-MM
func (h *reportHandlerImpl) HeatMap(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := subjectEmployee(w, r)
	if !ok {
		return
	}

	req := report.HeatMapRequest{Month: r.URL.Query().Get("month")}
	month, err := req.Validate()
	if err != nil {
		response.HandleError(w, err)
		return
	}

	cells, err := h.reportService.BuildHeatMap(r.Context(), employeeID, month)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, report.ToHeatMapResponse(employeeID, month, cells))
}

// Summary handles GET /reports/summary
func (h *reportHandlerImpl) Summary(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := subjectEmployee(w, r)
	if !ok {
		return
	}

	rng, err := rangeQuery(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	s, err := h.reportService.BuildSummary(r.Context(), employeeID, rng)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, report.ToSummaryResponse(s))
}

// TeamSummary handles GET /reports/summary/team
func (h *reportHandlerImpl) TeamSummary(w http.ResponseWriter, r *http.Request) {
	rng, err := rangeQuery(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	rows, err := h.reportService.BuildTeamSummary(r.Context(), rng)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, report.ToTeamSummaryResponse(rng, rows, time.Now().UTC()))
}

// ExportTeamSummary handles GET /reports/summary/team/export
func (h *reportHandlerImpl) ExportTeamSummary(w http.ResponseWriter, r *http.Request) {
	rng, err := rangeQuery(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	buf, filename, err := h.reportService.ExportTeamSummary(r.Context(), rng)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Attachment(w, xlsxContentType, filename, buf.Bytes())
}
