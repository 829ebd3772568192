package http

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"ecom/internal/cache"
	"ecom/internal/core"
	applog "ecom/internal/log"
	"ecom/internal/middleware/ratelimit"
	"ecom/internal/middleware/security"
	"ecom/internal/payment"
	"ecom/internal/services"
	"ecom/internal/stats"
	"ecom/internal/store"
)

const (
	cacheKeyLatest     = "latest"
	cacheKeyCategories = "categories"
	latestProductCount = 5
)

// Options configures NewServer. Store and Orders are required.
type Options struct {
	Addr   string
	Store  store.Store
	Orders *services.OrderService
	// Payments may be nil; payment intents are then rejected.
	Payments payment.Provider
	Logger   *applog.Logger

	UploadDir      string
	ProductPerPage int
	RatePerMinute  int
	CacheTTL       time.Duration
}

type Server struct {
	http.Server

	store     store.Store
	orders    *services.OrderService
	dashboard *stats.Dashboard
	payments  payment.Provider

	uploadDir string
	perPage   int
	now       func() time.Time
	started   time.Time

	limiter    *ratelimit.Limiter
	latest     cache.Cache[[]core.Product]
	categories cache.Cache[[]string]
	caches     *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(opts Options) *Server {
	if opts.UploadDir == "" {
		opts.UploadDir = "uploads"
	}
	if opts.ProductPerPage <= 0 {
		opts.ProductPerPage = 8
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 5 * time.Minute
	}
	if opts.Logger == nil {
		opts.Logger = applog.New(applog.DefaultConfig())
	}

	latest := cache.NewLRUCache[[]core.Product](1, opts.CacheTTL)
	categories := cache.NewLRUCache[[]string](1, opts.CacheTTL)
	caches := cache.NewManager()
	caches.Register(latest)
	caches.Register(categories)

	s := &Server{
		store:      opts.Store,
		orders:     opts.Orders,
		dashboard:  stats.NewDashboard(opts.Store),
		payments:   opts.Payments,
		uploadDir:  opts.UploadDir,
		perPage:    opts.ProductPerPage,
		now:        time.Now,
		started:    time.Now(),
		limiter:    ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RatePerMinute}),
		latest:     latest,
		categories: categories,
		caches:     caches,
	}
	caches.StartCleanup(10 * time.Minute)

	mux := http.NewServeMux()
	s.routes(mux)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	limitWrites := s.limiter.Middleware(applog.ClientIP, func(w http.ResponseWriter, r *http.Request) {
		slog.WarnContext(r.Context(), "Rate limit exceeded", applog.FieldClientIP, applog.ClientIP(r), applog.FieldPath, r.URL.Path)
		writeJSON(w, http.StatusTooManyRequests, envelope{"success": false, "message": "Too many requests, please try again later"})
	})

	var handler http.Handler = mux
	handler = writesOnly(limitWrites, handler)
	handler = headers.Middleware(handler)
	handler = applog.Middleware(opts.Logger)(handler)

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 16,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", handleIndex)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	uploads := http.StripPrefix("/uploads/", http.FileServer(http.Dir(s.uploadDir)))
	mux.Handle("GET /uploads/", security.StaticAssetMiddleware(3600)(uploads))

	mux.HandleFunc("POST /api/v1/user/new", s.handleNewUser)
	mux.HandleFunc("GET /api/v1/user/all", s.adminOnly(s.handleAllUsers))
	mux.HandleFunc("GET /api/v1/user/{id}", s.handleGetUser)
	mux.HandleFunc("DELETE /api/v1/user/{id}", s.adminOnly(s.handleDeleteUser))

	mux.HandleFunc("POST /api/v1/product/new", s.adminOnly(s.handleNewProduct))
	mux.HandleFunc("GET /api/v1/product/latest", s.handleLatestProducts)
	mux.HandleFunc("GET /api/v1/product/all", s.handleSearchProducts)
	mux.HandleFunc("GET /api/v1/product/categories", s.handleCategories)
	mux.HandleFunc("GET /api/v1/product/admin-products", s.adminOnly(s.handleAdminProducts))
	mux.HandleFunc("GET /api/v1/product/{id}", s.handleGetProduct)
	mux.HandleFunc("PUT /api/v1/product/{id}", s.adminOnly(s.handleUpdateProduct))
	mux.HandleFunc("DELETE /api/v1/product/{id}", s.adminOnly(s.handleDeleteProduct))

	mux.HandleFunc("POST /api/v1/order/new", s.handleNewOrder)
	mux.HandleFunc("GET /api/v1/order/my", s.handleMyOrders)
	mux.HandleFunc("GET /api/v1/order/all", s.adminOnly(s.handleAllOrders))
	mux.HandleFunc("GET /api/v1/order/{id}", s.handleGetOrder)
	mux.HandleFunc("PUT /api/v1/order/{id}", s.adminOnly(s.handleProcessOrder))
	mux.HandleFunc("DELETE /api/v1/order/{id}", s.adminOnly(s.handleDeleteOrder))

	mux.HandleFunc("POST /api/v1/payment/create", s.handleCreatePayment)
	mux.HandleFunc("POST /api/v1/payment/coupon/new", s.adminOnly(s.handleNewCoupon))
	mux.HandleFunc("GET /api/v1/payment/discount", s.handleApplyDiscount)
	mux.HandleFunc("GET /api/v1/payment/coupon/all", s.adminOnly(s.handleAllCoupons))
	mux.HandleFunc("DELETE /api/v1/payment/coupon/{id}", s.adminOnly(s.handleDeleteCoupon))

	mux.HandleFunc("GET /api/v1/dashboard/stats", s.adminOnly(s.handleDashboardStats))
	mux.HandleFunc("GET /api/v1/dashboard/pie", s.adminOnly(s.handlePieCharts))
	mux.HandleFunc("GET /api/v1/dashboard/bar", s.adminOnly(s.handleBarCharts))
	mux.HandleFunc("GET /api/v1/dashboard/line", s.adminOnly(s.handleLineCharts))
}

// writesOnly applies mw to requests that change state.
func writesOnly(mw func(http.Handler) http.Handler, next http.Handler) http.Handler {
	limited := mw(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
		default:
			limited.ServeHTTP(w, r)
		}
	})
}

// Shutdown stops background cleanup and gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.caches.Stop()
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

// EnsureUploadDir creates the upload directory if needed.
func (s *Server) EnsureUploadDir() error {
	return os.MkdirAll(s.uploadDir, 0o755)
}

func handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("API is Working well"))
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, envelope{
		"status":    "ok",
		"timestamp": s.now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).String(),
	})
}

// handleReady checks the record store when it can be pinged.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	checks := envelope{"store": "ok", "payments": "not_configured"}
	if s.payments != nil {
		checks["payments"] = "ok"
	}

	status, code := "ready", http.StatusOK
	if p, ok := s.store.(interface{ Ping(context.Context) error }); ok {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := p.Ping(ctx); err != nil {
			slog.WarnContext(r.Context(), "Readiness check failed", applog.FieldError, err)
			checks["store"] = "failed: " + err.Error()
			status, code = "not_ready", http.StatusServiceUnavailable
		}
	}
	writeJSON(w, code, envelope{"status": status, "checks": checks})
}

// invalidateCatalog drops cached product listings after a write.
func (s *Server) invalidateCatalog() {
	s.latest.Purge()
	s.categories.Purge()
}
