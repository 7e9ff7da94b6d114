package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/domain/user"
	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/http/handlers"
	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/http/metrics"
	httpmw "github.com/newslinemedia001-bot/newslinetrainingagency/internal/http/middleware"
	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/integration/blobstore"
)

type RouterDependencies struct {
	AuthHandler        *handlers.AuthHandler
	ApplicationHandler *handlers.ApplicationHandler
	AdminHandler       *handlers.AdminHandler
	CompanyHandler     *handlers.CompanyHandler
	MessageHandler     *handlers.MessageHandler
	UploadHandler      *handlers.UploadHandler
	CompatHandler      *handlers.CompatHandler
	FeedHandler        http.Handler
	AuthMiddleware     *httpmw.AuthMiddleware
	Limiter            httpmw.Limiter
	Metrics            *metrics.Collector
	Logger             httpmw.RequestLogger
	RequestTimeout     time.Duration
	CORSOrigins        []string
}

const (
	maxBodyBytes = 1 << 20
	// Room for the 5 MB document plus multipart framing.
	maxUploadBodyBytes = blobstore.MaxUploadBytes + 1<<20
)

func NewRouter(deps RouterDependencies) http.Handler {
	mux := chi.NewRouter()

	mux.Use(httpmw.RequestID)
	mux.Use(httpmw.Logging(deps.Logger))
	mux.Use(httpmw.Recover)
	mux.Use(httpmw.Metrics(deps.Metrics))
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	mux.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if deps.Metrics != nil {
		mux.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	submitLimit := httpmw.RateLimit(deps.Limiter, httpmw.ClientIP, 5, time.Minute)

	// The feed holds the connection open; request timeouts apply to
	// everything else. Uploads get room for a 5 MB document, the JSON
	// routes stay tightly capped.
	mux.Group(func(up chi.Router) {
		up.Use(httpmw.Timeout(deps.RequestTimeout))
		up.Use(httpmw.BodyLimit(maxUploadBodyBytes))
		up.Use(deps.AuthMiddleware.Authenticate)
		up.Post("/uploads", deps.UploadHandler.Upload)
	})

	mux.Group(func(g chi.Router) {
		g.Use(httpmw.Timeout(deps.RequestTimeout))
		g.Use(httpmw.BodyLimit(maxBodyBytes))

		g.Route("/auth", func(a chi.Router) {
			a.Post("/signup", deps.AuthHandler.SignUp)
			a.Post("/signin", deps.AuthHandler.SignIn)
			a.Post("/admin/signin", deps.AuthHandler.AdminSignIn)
			a.Post("/signin/federated", deps.AuthHandler.SignInFederated)
			a.Post("/signout", deps.AuthHandler.SignOut)
			a.Post("/refresh", deps.AuthHandler.Refresh)
			a.Post("/reset-password", deps.AuthHandler.ResetPassword)
			a.Post("/reset-password/complete", deps.AuthHandler.CompleteReset)
			a.Get("/session", deps.AuthHandler.Session)
		})

		g.Get("/categories", deps.ApplicationHandler.Categories)
		g.With(submitLimit).Post("/applications", deps.ApplicationHandler.Submit)

		// Legacy notification API shapes.
		g.With(submitLimit).Post("/api/submit-application", deps.CompatHandler.SubmitApplication)
		g.Post("/api/send-student-email", deps.CompatHandler.SendStudentEmail)

		g.Group(func(p chi.Router) {
			p.Use(deps.AuthMiddleware.Authenticate)

			p.Get("/applications/{id}", deps.ApplicationHandler.Get)
			p.Get("/messages", deps.MessageHandler.Inbox)
			p.Post("/messages/{id}/read", deps.MessageHandler.MarkRead)

			p.Group(func(st chi.Router) {
				st.Use(httpmw.RequireRole(user.RoleStudent))
				st.Get("/applications", deps.ApplicationHandler.ListMine)
			})

			p.Group(func(co chi.Router) {
				co.Use(httpmw.RequireRole(user.RoleCompany))
				co.Use(httpmw.RequireApprovedCompany)
				co.Get("/company/applications", deps.CompanyHandler.ListAssigned)
				co.Post("/company/applications/{id}/decision", deps.CompanyHandler.RecordDecision)
			})

			p.Group(func(ad chi.Router) {
				ad.Use(httpmw.RequireRole(user.RoleAdmin))
				ad.Get("/admin/applications", deps.AdminHandler.ListApplications)
				ad.Patch("/admin/applications/{id}/status", deps.AdminHandler.SetStatus)
				ad.Post("/admin/applications/{id}/assign", deps.AdminHandler.AssignCompany)
				ad.Get("/admin/companies", deps.AdminHandler.ListCompanies)
				ad.Patch("/admin/companies/{uid}/approval", deps.AdminHandler.SetCompanyApproval)
				ad.Post("/admin/messages", deps.AdminHandler.SendMessage)
			})
		})
	})

	if deps.FeedHandler != nil {
		mux.Group(func(g chi.Router) {
			g.Use(deps.AuthMiddleware.Authenticate)
			g.Use(httpmw.RequireRole(user.RoleAdmin))
			g.Method(http.MethodGet, "/admin/applications/feed", deps.FeedHandler)
		})
	}

	return mux
}
