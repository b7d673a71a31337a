package http

import (
	"log/slog"
	"os"

	"github.com/cmlabs-hris/payroll-backend-go/internal/config"
	"github.com/cmlabs-hris/payroll-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(
	cfg *config.Config,
	jwtService *jwt.Service,
	companyHandler CompanyHandler,
	employeeHandler EmployeeHandler,
	taxConfigHandler TaxConfigurationHandler,
	structureHandler SalaryStructureHandler,
	declarationHandler TaxDeclarationHandler,
	payrollHandler PayrollHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "payroll-backend"),
		slog.String("version", "v1.0.0"),
		slog.String("env", cfg.App.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.App.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))

	processLimiter := middleware.NewRateLimiter(cfg.Payroll.ProcessRateLimit, cfg.Payroll.ProcessRateBurst)

	r.Route("/api/v1", func(r chi.Router) {

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
			r.Use(middleware.AuthRequired(jwtService.JWTAuth()))

			r.Route("/companies", func(r chi.Router) {
				r.Get("/", companyHandler.List)
				r.Get("/{id}", companyHandler.GetByID)

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Post("/", companyHandler.Create)
					r.Put("/{id}", companyHandler.Update)
				})
			})

			r.Route("/employees", func(r chi.Router) {
				r.Get("/", employeeHandler.List)
				r.With(middleware.CompanyScope).Get("/company/{companyId}", employeeHandler.List)
				r.Get("/{id}", employeeHandler.GetByID)

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Post("/", employeeHandler.Create)
					r.Put("/{id}", employeeHandler.Update)
				})
			})

			r.Route("/tax-configurations", func(r chi.Router) {
				r.Get("/", taxConfigHandler.List)
				r.With(middleware.CompanyScope).Get("/company/{companyId}", taxConfigHandler.List)
				r.Get("/{id}", taxConfigHandler.GetByID)

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Post("/", taxConfigHandler.Create)
					r.Put("/{id}", taxConfigHandler.Update)
				})
			})

			r.Route("/salary-structures", func(r chi.Router) {
				r.Get("/", structureHandler.List)
				r.With(middleware.CompanyScope).Get("/company/{companyId}", structureHandler.List)
				r.Get("/{id}", structureHandler.GetByID)
				r.Get("/employee/{employeeId}", structureHandler.GetEmployeeSalary)

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Post("/", structureHandler.Create)
					r.Put("/{id}", structureHandler.Update)
					r.Delete("/{id}", structureHandler.Delete)
					r.Post("/assign", structureHandler.Assign)
				})
			})

			r.Route("/tax-declarations", func(r chi.Router) {
				r.Post("/", declarationHandler.Create)
				r.Get("/{id}", declarationHandler.GetByID)
				r.Get("/employee/{employeeId}", declarationHandler.GetByEmployee)
				r.Put("/{id}", declarationHandler.Update)
				r.Post("/{id}/submit", declarationHandler.Submit)

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Post("/{id}/verify", declarationHandler.Verify)
					r.Post("/{id}/reject", declarationHandler.Reject)
				})
			})

			r.Route("/payroll", func(r chi.Router) {
				r.Route("/runs", func(r chi.Router) {
					r.Get("/", payrollHandler.ListRuns)
					r.Get("/{id}", payrollHandler.GetRun)
					r.Get("/{id}/failures", payrollHandler.ListRunFailures)

					// Admin only
					r.Group(func(r chi.Router) {
						r.Use(middleware.AdminOnly)
						r.Post("/", payrollHandler.CreateRun)
						r.Post("/{id}/lock", payrollHandler.LockRun)

						r.Group(func(r chi.Router) {
							r.Use(processLimiter.Handler)
							r.Post("/{id}/process", payrollHandler.ProcessRun)
						})
					})
				})

				r.Route("/payslips", func(r chi.Router) {
					r.Get("/run/{runId}", payrollHandler.ListPayslipsByRun)
					r.Get("/{id}", payrollHandler.GetPayslip)
					r.Get("/{id}/document", payrollHandler.GetPayslipDocument)

					// Admin only
					r.Group(func(r chi.Router) {
						r.Use(middleware.AdminOnly)
						r.Post("/{id}/approve", payrollHandler.ApprovePayslip)
					})
				})
			})
		})
	})

	return r
}
