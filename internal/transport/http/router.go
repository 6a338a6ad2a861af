package http

import (
	"log/slog"
	"net/http"

	"github.com/go-accounts-api/internal/application/account"
	"github.com/go-accounts-api/internal/application/notification"
	"github.com/go-accounts-api/internal/application/otp"
	"github.com/go-accounts-api/internal/application/session"
	"github.com/go-accounts-api/internal/application/token"
	"github.com/go-accounts-api/internal/application/verification"
	"github.com/go-accounts-api/internal/config"
	"github.com/go-accounts-api/internal/transport/http/handler"
	appmiddleware "github.com/go-accounts-api/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	AccountRepo AccountRepository
	OTPRepo     OTPRepository
	Mailer      Mailer
	SMSSender   SMSSender
	Hasher      PasswordHasher
	Tokens      token.Service
	Logger      *slog.Logger
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	otpSvc := otp.NewService(otp.ServiceDeps{
		Store:  deps.OTPRepo,
		Hasher: deps.Hasher,
		TTL:    cfg.OTPTTL,
	})
	dispatchSvc := notification.NewService(notification.ServiceDeps{
		Mailer:   deps.Mailer,
		SMS:      deps.SMSSender,
		BaseURL:  cfg.PublicBaseURL,
		Timeout:  cfg.DispatchTimeout,
		TokenTTL: cfg.EmailTokenTTL,
		CodeTTL:  cfg.OTPTTL,
	})
	verificationSvc := verification.NewService(verification.ServiceDeps{
		Accounts:   deps.AccountRepo,
		OTPs:       otpSvc,
		Tokens:     deps.Tokens,
		Dispatcher: dispatchSvc,
		Logger:     deps.Logger,
	})
	accountSvc := account.NewService(account.ServiceDeps{
		AccountRepo: deps.AccountRepo,
		Hasher:      deps.Hasher,
		OTPs:        otpSvc,
		Verifier:    verificationSvc,
		AutoVerify:  cfg.AutoVerifyOnRegister,
		Logger:      deps.Logger,
	})
	sessionSvc := session.NewService(session.ServiceDeps{
		Accounts: deps.AccountRepo,
		Hasher:   deps.Hasher,
		Tokens:   deps.Tokens,
	})

	healthH := handler.NewHealthHandler()
	accountH := handler.NewAccountHandler(accountSvc)
	sessionH := handler.NewSessionHandler(sessionSvc)
	verifyH := handler.NewVerificationHandler(verificationSvc)
	authMw := appmiddleware.Auth(deps.Tokens)

	r.Get("/", healthH.Root)
	r.Get("/health-check/{action}", healthH.Ping)

	r.Route(notification.RoutePrefix, func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Post("/register", accountH.Register)
		r.Post("/login", sessionH.Login)
		r.Get("/users", accountH.List)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Put("/update-user/{id}", accountH.Update)
			r.Delete("/delete-user/{id}", accountH.Delete)
			r.Get("/sendotp", verifyH.SendOTP)
			r.Get("/verifyemail/{token}", verifyH.VerifyEmail)
			r.Get("/verifyotp/{otp}", verifyH.VerifyOTP)
		})
	})

	return r
}
