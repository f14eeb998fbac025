package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/unrolled/secure"

	"github.com/reshop/server/internal/auth"
	"github.com/reshop/server/internal/bookings"
	"github.com/reshop/server/internal/images"
	"github.com/reshop/server/internal/middleware"
	"github.com/reshop/server/internal/models"
	"github.com/reshop/server/internal/observability"
	"github.com/reshop/server/internal/payments"
	"github.com/reshop/server/internal/products"
	"github.com/reshop/server/internal/reports"
	"github.com/reshop/server/internal/store"
	"github.com/reshop/server/internal/users"
	"github.com/reshop/server/internal/wishlist"
)

// Params groups the dependencies of the HTTP router.
type Params struct {
	Logger *slog.Logger

	Codec       *auth.Codec
	Revocations *auth.RevocationStore

	Users    store.Documents
	Products store.Documents
	Wishlist store.Documents
	Reports  store.Documents
	Bookings store.Documents

	Payments        payments.Processor
	Ledger          payments.Ledger
	PaymentCurrency string
	Images          images.FileStore

	Metrics        *observability.Metrics
	AllowedOrigins []string
	RateLimit      int
	RequestTimeout time.Duration
	Production     bool
}

// NewRouter builds the chi router with every route and its guard chain.
func NewRouter(p Params) http.Handler {
	log := p.Logger

	authHandler := auth.NewHandler(p.Users, p.Codec, p.Revocations, log)
	userHandler := users.NewHandler(p.Users, log)
	productHandler := products.NewHandler(p.Products, log)
	wishlistHandler := wishlist.NewHandler(p.Wishlist, log)
	reportHandler := reports.NewHandler(p.Reports, log)
	bookingHandler := bookings.NewHandler(p.Bookings, p.Wishlist, log)
	paymentHandler := payments.NewHandler(p.Payments, p.Ledger, p.PaymentCurrency, log)
	imageHandler := images.NewHandler(p.Images, log)

	var revoked middleware.RevocationChecker
	if p.Revocations != nil {
		revoked = p.Revocations
	}
	requireAuth := middleware.RequireAuth(p.Codec, revoked, log)
	requireAdmin := middleware.RequireRole(users.NewRoleDirectory(p.Users), models.RoleAdmin, log)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(p.Metrics.Middleware)
	if p.RequestTimeout > 0 {
		r.Use(chimw.Timeout(p.RequestTimeout))
	}
	r.Use(secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
		SSLRedirect:        p.Production,
		SSLProxyHeaders:    map[string]string{"X-Forwarded-Proto": "https"},
		IsDevelopment:      !p.Production,
	}).Handler)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   p.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	if p.RateLimit > 0 {
		r.Use(httprate.Limit(p.RateLimit, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)))
	}

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Re Shop server running"))
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", p.Metrics.Handler())

	// Public routes
	r.Put("/user/{email}", authHandler.SignIn)
	r.Get("/seller/{email}", userHandler.Seller)
	r.Get("/products", productHandler.List)
	r.Get("/products/advertised", productHandler.Advertised)
	r.Get("/product/{id}", productHandler.Get)
	r.Get("/images/*", imageHandler.Download)

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(requireAuth)

		r.Post("/logout", authHandler.Logout)

		r.Get("/user/{email}", userHandler.Get)
		r.Get("/products/{email}", productHandler.ListBySeller)
		r.Post("/products", productHandler.Create)
		r.Put("/product/{id}", productHandler.Update)
		r.Delete("/product/{id}", productHandler.Delete)

		r.Get("/wishlist/{email}", wishlistHandler.List)
		r.Get("/wishlist/{email}/{productId}", wishlistHandler.Status)
		r.Post("/wishlist", wishlistHandler.Add)
		r.Delete("/wishlist/{id}", wishlistHandler.Delete)
		r.Delete("/wishlist/product/{productId}", wishlistHandler.DeleteByProduct)

		r.Post("/reports", reportHandler.Add)

		r.Get("/bookings/{email}", bookingHandler.List)
		r.Post("/bookings", bookingHandler.Create)
		r.Delete("/bookings/{id}", bookingHandler.Delete)

		r.Post("/create-payment-intent", paymentHandler.CreateIntent)
		r.Get("/payments/{email}", paymentHandler.History)

		r.Post("/images", imageHandler.Upload)

		// Admin routes
		r.Group(func(r chi.Router) {
			r.Use(requireAdmin)

			r.Get("/users", userHandler.List)
			r.Delete("/user/{id}", userHandler.Delete)
			r.Get("/reports", reportHandler.List)
			r.Delete("/reports/product/{productId}", reportHandler.DeleteByProduct)
		})
	})

	return r
}
