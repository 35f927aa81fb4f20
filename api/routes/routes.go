package routes

import (
	"time"

	"lms/api/handler"
	"lms/api/middleware"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

const RoleAdmin = "ADMIN"

type Router struct {
	Echo             *echo.Echo
	Auth             *handler.AuthHandler
	Registration     *handler.RegistrationHandler
	AuthMiddleware   middleware.AuthMiddleware
	Auditor          middleware.AccessAuditor
	RegistrationRate *middleware.RateLimiter
	LoginRate        *middleware.RateLimiter
}

func NewRouter(
	e *echo.Echo,
	authHandler *handler.AuthHandler,
	registrationHandler *handler.RegistrationHandler,
	authMiddleware middleware.AuthMiddleware,
	auditor middleware.AccessAuditor,
) *Router {
	return &Router{
		Echo:             e,
		Auth:             authHandler,
		Registration:     registrationHandler,
		AuthMiddleware:   authMiddleware,
		Auditor:          auditor,
		RegistrationRate: middleware.NewRateLimiter(rate.Limit(5), 10, 5*time.Minute),
		LoginRate:        middleware.NewRateLimiter(rate.Limit(2), 4, 10*time.Minute),
	}
}

func (r *Router) RegisterRoutes() {
	e := r.Echo

	reg := e.Group("/api/v1/registration")
	reg.POST("/verify-identity", r.Registration.VerifyIdentity, r.RegistrationRate.Middleware())
	reg.POST("/employee", r.Registration.RegisterEmployee, r.RegistrationRate.Middleware())
	reg.POST("/job-seeker", r.Registration.RegisterJobSeeker, r.RegistrationRate.Middleware())
	reg.GET("/validate-username/:username", r.Registration.ValidateUsername)
	reg.GET("/quick-validate-username", r.Registration.QuickValidateUsername)
	reg.GET("/recommend-username", r.Registration.RecommendUsername)
	reg.GET("/check-username/:username", r.Registration.CheckUsername)
	reg.GET("/check-email", r.Registration.CheckEmail)
	reg.GET("/verify-token/:token", r.Registration.VerifyToken)

	e.POST("/auth/login", r.Auth.Login, r.LoginRate.Middleware())
	e.POST("/auth/logout", r.Auth.Logout, r.AuthMiddleware.RequireAuth)
	e.GET("/auth/health", r.Auth.Health)

	e.GET("/me", r.Auth.Me, r.AuthMiddleware.RequireAuth)
	e.GET("/admin/users", r.Auth.AdminListUsers, r.AuthMiddleware.RequireAuth, middleware.RequireRole(RoleAdmin, r.Auditor))
	e.GET("/admin/sessions", r.Auth.AdminSessions, r.AuthMiddleware.RequireAuth, middleware.RequireRole(RoleAdmin, r.Auditor))

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}
