package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/cmlabs-hris/hris-timesheet-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type RouterConfig struct {
	AppName        string
	Version        string
	Env            string
	AllowedOrigins []string
	LogLevel       slog.Level
}

type Handlers struct {
	Health       http.HandlerFunc
	Employee     EmployeeHandler
	Schedule     ScheduleHandler
	Timesheet    TimesheetHandler
	Attendance   AttendanceHandler
	Request      RequestHandler
	Report       ReportHandler
	Notification NotificationHandler
}

func NewRouter(cfg RouterConfig, JWTService jwt.Service, h Handlers) http.Handler {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", cfg.AppName),
		slog.String("version", cfg.Version),
		slog.String("env", cfg.Env),
	)

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  cfg.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	if h.Health != nil {
		r.Get("/healthz", h.Health)
	}

	r.Route("/api/v1", func(r chi.Router) {
		// EventSource cannot send headers; the stream authenticates with its own token.
		r.Get("/notifications/stream", h.Notification.Stream)

		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired)

			r.Route("/employees", func(r chi.Router) {
				r.Get("/me", h.Employee.Me)
				r.Get("/{id}", h.Employee.Get)
				r.Get("/{id}/schedule", h.Schedule.GetForEmployee)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(jwt.RoleHR))
					r.Get("/", h.Employee.List)
					r.Post("/", h.Employee.Create)
					r.Put("/{id}/approvers", h.Employee.UpdateApprovers)
					r.Put("/{id}/schedule", h.Schedule.Assign)
				})
			})

			r.Route("/schedules", func(r chi.Router) {
				r.Get("/me", h.Schedule.GetMine)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(jwt.RoleHR))
					r.Post("/", h.Schedule.Create)
					r.Get("/{id}", h.Schedule.Get)
					r.Put("/{id}/windows", h.Schedule.SetWindow)
					r.Delete("/{id}/windows/{weekday}", h.Schedule.RemoveWindow)
				})
			})

			r.Route("/timesheet", func(r chi.Router) {
				r.Post("/events", h.Timesheet.RecordEvent)
				r.Get("/events", h.Timesheet.ListEvents)
				r.Get("/sessions", h.Timesheet.Sessions)
			})

			r.Route("/attendance", func(r chi.Router) {
				r.Get("/days", h.Attendance.ListDays)
				r.Get("/days/{date}", h.Attendance.GetDay)
			})

			r.Route("/requests", func(r chi.Router) {
				r.Post("/", h.Request.Submit)
				r.Get("/me", h.Request.ListMine)
				r.Get("/approvals", h.Request.ListApprovals)
				r.Get("/{id}", h.Request.Get)
				r.Post("/{id}/decision", h.Request.Decide)
			})

			r.Route("/reports", func(r chi.Router) {
				r.Get("/heatmap", h.Report.HeatMap)
				r.Get("/summary", h.Report.Summary)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(jwt.RoleHR))
					r.Get("/summary/team", h.Report.TeamSummary)
					r.Get("/summary/team/export", h.Report.ExportTeamSummary)
				})
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", h.Notification.List)
				r.Get("/unread-count", h.Notification.UnreadCount)
				r.Patch("/read-all", h.Notification.MarkAllAsRead)
				r.Patch("/{id}/read", h.Notification.MarkAsRead)
				r.Get("/preferences", h.Notification.GetPreferences)
				r.Put("/preferences", h.Notification.UpdatePreference)
				r.Get("/sse-token", h.Notification.GetSSEToken)
			})
		})
	})

	return otelhttp.NewHandler(r, "hris-timesheet",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}
