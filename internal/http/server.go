package httpapi

import (
	"context"
	"net/http"
	"time"

	"foundgames-backend-go/internal/config"
	"foundgames-backend-go/internal/metrics"
	"foundgames-backend-go/internal/models"
	"foundgames-backend-go/internal/roster"
	"foundgames-backend-go/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// ProfileStore is the profile persistence the handlers and admin middleware
// rely on.
type ProfileStore interface {
	GetProfile(ctx context.Context, id string) (models.Profile, error)
	Authenticate(ctx context.Context, email, password string) (models.Profile, error)
	SetupAdmin(ctx context.Context, configuredKey string, in services.AdminSetupInput) (models.Profile, error)
	ListProfiles(ctx context.Context, search string) ([]models.Profile, error)
	SetRole(ctx context.Context, actorID, profileID, role string) (models.Profile, error)
}

// RateLimiter reports whether a caller key is within quota.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type Server struct {
	DB            *sqlx.DB
	Config        config.Config
	Tokens        services.TokenService
	Log           *zap.Logger
	Profiles      ProfileStore
	Verifications *services.VerificationService
	Importer      *roster.Importer
	Events        *services.EventHub
	Limiter       RateLimiter
}

type Deps struct {
	DB            *sqlx.DB
	Log           *zap.Logger
	Verifications *services.VerificationService
	Events        *services.EventHub
	Limiter       RateLimiter
}

func NewServer(cfg config.Config, deps Deps) *Server {
	tokens := services.TokenService{
		Secret:     []byte(cfg.JWTSecret),
		Issuer:     cfg.JWTIssuer,
		AccessTTL:  time.Duration(cfg.AccessTTLSeconds) * time.Second,
		RefreshTTL: time.Duration(cfg.RefreshTTLSeconds) * time.Second,
	}
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		DB:            deps.DB,
		Config:        cfg,
		Tokens:        tokens,
		Log:           log,
		Profiles:      services.ProfileService{DB: deps.DB},
		Verifications: deps.Verifications,
		Importer: &roster.Importer{
			Store: services.RosterStore{DB: deps.DB},
			Log:   log.Named("roster"),
		},
		Events:  deps.Events,
		Limiter: deps.Limiter,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(s.Log))
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)
	if len(s.Config.CorsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.Config.CorsOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Content-Disposition"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	r.Get("/healthz", s.Health)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(api chi.Router) {
		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/login", s.Login)
			auth.Post("/refresh", s.Refresh)
			auth.Post("/admin-setup", s.AdminSetup)
			auth.With(WithAuth(s.Tokens)).Get("/me", s.Me)
		})

		api.With(s.RateLimit("discord")).Post("/discord/check", s.DiscordCheck)

		api.Route("/verifications", func(v chi.Router) {
			v.With(s.RateLimit("verify")).Post("/", s.SubmitVerification)
			v.Get("/status", s.VerificationStatus)
			v.With(s.RateLimit("document")).Post("/{id}/document", s.UploadDocument)
		})

		api.Get("/public/server-info", s.ServerInfo)

		api.Route("/admin", func(admin chi.Router) {
			admin.Use(WithAuth(s.Tokens))
			admin.Use(s.RequireAdmin)

			admin.Get("/summary", s.AdminSummary)
			admin.Get("/system", s.SystemStats)

			admin.Route("/buildings", func(b chi.Router) {
				b.Get("/", s.ListBuildings)
				b.Post("/", s.CreateBuilding)
				b.Put("/{id}", s.UpdateBuilding)
				b.Delete("/{id}", s.DeleteBuilding)
			})
			admin.Route("/residents", func(res chi.Router) {
				res.Get("/", s.ListResidents)
				res.Post("/", s.CreateResident)
				res.Get("/export", s.ExportResidents)
				res.Put("/{id}", s.UpdateResident)
			})
			admin.Route("/imports", func(im chi.Router) {
				im.Get("/", s.ImportHistory)
				im.Post("/", s.ImportResidents)
			})
			admin.Route("/verifications", func(v chi.Router) {
				v.Get("/", s.AdminListVerifications)
				v.Get("/{id}", s.AdminGetVerification)
				v.Get("/{id}/document", s.AdminVerificationDocument)
				v.Post("/{id}/approve", s.ApproveVerification)
				v.Post("/{id}/reject", s.RejectVerification)
			})
			admin.Route("/profiles", func(p chi.Router) {
				p.Get("/", s.ListProfiles)
				p.Put("/{id}/role", s.SetProfileRole)
			})
		})
	})

	r.Get("/ws/events", s.EventsSocket)
	return r
}

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	if s.DB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.DB.PingContext(ctx); err != nil {
			WriteError(w, http.StatusServiceUnavailable, "Database unavailable")
			return
		}
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
