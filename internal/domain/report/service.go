package report

import (
	"bytes"
	"context"
	"time"

	"github.com/cmlabs-hris/hris-timesheet-go/internal/pkg/period"
)

type ReportService interface {
	BuildHeatMap(ctx context.Context, employeeID string, month time.Time) ([]HeatMapCell, error)
	BuildSummary(ctx context.Context, employeeID string, r period.Range) (Summary, error)
	// BuildTeamSummary covers every active employee with a schedule.
	BuildTeamSummary(ctx context.Context, r period.Range) ([]Summary, error)
	// ExportTeamSummary renders the team summary as an XLSX workbook and suggests a file name.
	ExportTeamSummary(ctx context.Context, r period.Range) (*bytes.Buffer, string, error)
}
