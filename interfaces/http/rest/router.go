package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"titlechain/application/commands/bus"
	"titlechain/application/queries"
	querybus "titlechain/application/queries/bus"
	"titlechain/interfaces/http/rest/handlers"
	"titlechain/interfaces/http/rest/middleware"
	"titlechain/pkg/common"
	pkgerrors "titlechain/pkg/errors"
	"titlechain/pkg/observability"
	"titlechain/pkg/ratelimit"
)

// RouterOptions tunes the HTTP surface
type RouterOptions struct {
	EnableCORS     bool
	AllowedOrigins []string
	Debug          bool // include internal error messages in responses
	RequestTimeout time.Duration
	RateLimiter    *ratelimit.KeyedLimiter // nil disables rate limiting
}

// Router creates and configures the HTTP router
type Router struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	tracer     *observability.Tracer
	logger     *zap.Logger
	opts       RouterOptions
}

// NewRouter creates a new router instance. tracer may be nil.
func NewRouter(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	tracer *observability.Tracer,
	logger *zap.Logger,
	opts RouterOptions,
) *Router {
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"http://localhost:3000"}
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}
	return &Router{
		commandBus: commandBus,
		queryBus:   queryBus,
		tracer:     tracer,
		logger:     logger,
		opts:       opts,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()
	errorHandler := pkgerrors.NewErrorHandler(rt.logger, rt.opts.Debug)

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(errorHandler.Middleware)
	router.Use(middleware.Logger(rt.logger))
	if rt.opts.RateLimiter != nil {
		router.Use(middleware.RateLimit(rt.opts.RateLimiter, rt.logger))
	}
	router.Use(chimiddleware.Timeout(rt.opts.RequestTimeout))
	if rt.tracer != nil && rt.tracer.Enabled() {
		router.Use(rt.tracer.Middleware)
	}

	if rt.opts.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   rt.opts.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	router.Route("/api/v2", func(r chi.Router) {
		r.Route("/acts", func(r chi.Router) {
			actHandler := handlers.NewActHandler(rt.queryBus, errorHandler, rt.logger)
			r.Get("/", actHandler.ListActs)
			r.Get("/{numero}", actHandler.GetAct)
		})

		r.Route("/canvases", func(r chi.Router) {
			canvasHandler := handlers.NewCanvasHandler(rt.commandBus, rt.queryBus, errorHandler, rt.logger)
			r.Post("/", canvasHandler.CreateCanvas)
			r.Get("/", canvasHandler.ListCanvases)

			r.Route("/{canvasID}", func(r chi.Router) {
				r.Get("/", canvasHandler.GetCanvas)
				r.Delete("/", canvasHandler.DeleteCanvas)

				r.Post("/acts", canvasHandler.PlaceAct)
				r.Post("/drop", canvasHandler.Drop)
				r.Post("/clear", canvasHandler.Clear)
				r.Post("/zoom", canvasHandler.Zoom)

				r.Route("/nodes/{nodeID}", func(r chi.Router) {
					r.Delete("/", canvasHandler.RemoveNode)
					r.Put("/blocks/{block}", canvasHandler.MoveSubBlock)
					r.Get("/lineage", canvasHandler.Lineage)
				})

				r.Post("/drag/start", canvasHandler.DragStart)
				r.Post("/drag/move", canvasHandler.DragMove)
				r.Post("/drag/end", canvasHandler.DragEnd)

				r.Post("/connections", canvasHandler.Connect)
				r.Delete("/connections", canvasHandler.RemoveConnectionsByKind)
				r.Delete("/connections/{index}", canvasHandler.RemoveConnection)

				r.Post("/connect/start", canvasHandler.ConnectStart)
				r.Post("/connect/click", canvasHandler.ConnectClick)
				r.Post("/connect/cancel", canvasHandler.ConnectCancel)
			})
		})
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// readinessCheck reports ready once the act record store answers
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), 5*time.Second)
	defer cancel()

	if _, err := rt.queryBus.Ask(ctx, queries.ListActsQuery{Limit: 1}); err != nil {
		rt.logger.Warn("Readiness check failed", zap.Error(err))
		common.RespondError(w, http.StatusServiceUnavailable, common.StandardErrorCodes.ServiceUnavailable, "act records unavailable")
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
