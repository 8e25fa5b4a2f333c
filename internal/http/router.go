package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/staffhub/internal/auth"
	"github.com/geocoder89/staffhub/internal/config"
	"github.com/geocoder89/staffhub/internal/domain/role"
	"github.com/geocoder89/staffhub/internal/gate"
	"github.com/geocoder89/staffhub/internal/http/handlers"
	"github.com/geocoder89/staffhub/internal/http/middlewares"
	"github.com/geocoder89/staffhub/internal/notifications"
	"github.com/geocoder89/staffhub/internal/observability"
	"github.com/geocoder89/staffhub/internal/repo/cached"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const maxBodyBytes = 1 << 20

// Deps is everything the HTTP layer needs. Prom, Metrics, Notifier and
// Ready are optional.
type Deps struct {
	Log *slog.Logger
	Cfg config.Config

	Prom    *observability.Prom
	Metrics http.Handler

	Resolver    middlewares.SessionResolver
	Gate        *gate.Gate
	Tokens      handlers.TokenIssuer
	Revocations auth.RevocationStore

	Users     cached.UserStore
	Employees handlers.EmployeeReader
	Notifier  notifications.Notifier

	Ready map[string]handlers.Pinger
}

func NewRouter(d Deps) *gin.Engine {
	if d.Cfg.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}
	if d.Log == nil {
		d.Log = slog.Default()
	}

	if err := handlers.RegisterValidators(); err != nil {
		panic(err)
	}

	r := gin.New()

	// middleware

	r.Use(otelgin.Middleware("staffhub"))
	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.RequestLogger())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(d.Cfg.CORSAllowedOrigins))

	// health
	h := handlers.NewHealthHandler(d.Ready, d.Log)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics))
	}

	// the prom collector satisfies gate.Recorder; nil stays a nil interface
	g := d.Gate
	if g == nil {
		var rec gate.Recorder
		if d.Prom != nil {
			rec = d.Prom
		}
		g = gate.New(gate.DefaultSignInPath, rec)
	}
	sg := middlewares.NewSessionGate(d.Resolver, g, d.Log)

	var signInRec handlers.SignInRecorder
	if d.Prom != nil {
		signInRec = d.Prom
	}

	sessionHandler := handlers.NewSessionHandler(d.Resolver, d.Log)
	authHandler := handlers.NewAuthHandler(d.Users, d.Tokens, d.Resolver, d.Revocations, signInRec, d.Cfg, d.Log)
	usersHandler := handlers.NewUsersHandler(d.Users, d.Notifier, d.Log)
	employeesHandler := handlers.NewEmployeesHandler(d.Employees, d.Log)
	pages := handlers.NewPagesHandler()

	signInLimit := d.Cfg.SignInRateLimit
	if signInLimit <= 0 {
		signInLimit = 10
	}
	signInLimiter := middlewares.NewRateLimiter(signInLimit, time.Minute)
	apiLimiter := middlewares.NewRateLimiter(300, time.Minute)

	// API
	api := r.Group("/api")
	api.Use(middlewares.MaxBodyBytes(maxBodyBytes))

	api.GET("/session", sessionHandler.Get)

	authGroup := api.Group("/auth")
	authGroup.POST("/sign-in",
		signInLimiter.RateLimiterMiddleware(middlewares.KeyByIP),
		middlewares.RequireJSON(),
		authHandler.SignIn,
	)
	authGroup.POST("/sign-out", authHandler.SignOut)

	limited := apiLimiter.RateLimiterMiddleware(middlewares.KeyByUserOrIP)

	users := api.Group("/users")
	users.GET("", sg.RequireAPI(role.Admin, role.HR), limited, usersHandler.List)
	users.GET("/:id", sg.RequireAPI(role.Admin, role.HR), limited, usersHandler.GetByID)
	users.PATCH("/:id/role", sg.RequireAPI(role.Admin), limited, middlewares.RequireJSON(), usersHandler.AssignRole)

	api.GET("/employees/me", sg.RequireAPI(), limited, employeesHandler.Me)

	// pages
	r.GET("/", func(ctx *gin.Context) { ctx.Redirect(http.StatusFound, "/dashboard") })
	r.GET(gate.DefaultSignInPath, pages.SignIn)
	r.GET("/dashboard", sg.RequirePage(), pages.Landing)
	r.GET("/pending", sg.RequirePage(), pages.Landing)
	r.GET("/admin", sg.RequirePage(role.Admin), pages.Admin)
	r.GET("/hr", sg.RequirePage(role.Admin, role.HR), pages.HR)
	r.GET("/employee", sg.RequirePage(role.Employee), pages.Employee)

	return r
}
