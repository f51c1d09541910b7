package routes

import (
	"net/http"

	"github.com/andesalud/clinica-backend/internal/api/handlers"
	"github.com/andesalud/clinica-backend/internal/api/middleware"
	"github.com/andesalud/clinica-backend/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	bookingHandler        *handlers.BookingHandler
	reconciliationHandler *handlers.ReconciliationHandler
	tariffHandler         *handlers.TariffHandler
	profileHandler        *handlers.ProfileHandler

	cacheMiddleware *middleware.CacheMiddleware
	metrics         *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	bookingHandler *handlers.BookingHandler,
	reconciliationHandler *handlers.ReconciliationHandler,
	tariffHandler *handlers.TariffHandler,
	profileHandler *handlers.ProfileHandler,
	cacheMiddleware *middleware.CacheMiddleware,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux: http.NewServeMux(),

		bookingHandler:        bookingHandler,
		reconciliationHandler: reconciliationHandler,
		tariffHandler:         tariffHandler,
		profileHandler:        profileHandler,

		cacheMiddleware: cacheMiddleware,
		metrics:         metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {

	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Booking endpoints

	r.mux.HandleFunc("POST /api/appointments", r.bookingHandler.BookAppointment)

	r.mux.HandleFunc("GET /api/appointments/{id}", r.bookingHandler.GetAppointment)

	// Reconciliation endpoints (staff)

	r.mux.HandleFunc("GET /api/appointments/pending-validation", r.reconciliationHandler.ListPendingValidation)

	r.mux.HandleFunc("POST /api/appointments/{id}/reconciliation", r.reconciliationHandler.Reconcile)

	r.mux.HandleFunc("GET /api/appointments/{id}/reconciliation", r.reconciliationHandler.ListEntries)

	// Tariff endpoints

	r.mux.HandleFunc("GET /api/tariffs", r.tariffHandler.ListTariffs)

	r.mux.HandleFunc("GET /api/tariffs/{specialty}", r.tariffHandler.GetTariff)

	// Insurance profile endpoints (patient self-service)

	r.mux.HandleFunc("GET /api/patients/{id}/insurance-profile", r.profileHandler.GetProfile)

	r.mux.HandleFunc("PUT /api/patients/{id}/insurance-profile", r.profileHandler.DeclareProfile)

	// Apply middleware in reverse order (last middleware wraps first)
	// CORS must be outermost so cached responses also get CORS headers.

	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)

	// Apply cache middleware if available
	if r.cacheMiddleware != nil {
		handler = r.cacheMiddleware.Middleware(handler)
	}

	// Compression and conditional-request handling sit outside the
	// response cache so cached bodies are stored uncompressed
	handler = middleware.ResponseOptimization(handler)

	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)

	// CORS wraps everything so headers are set even on cache HITs
	handler = middleware.CORSMiddleware(handler)

	return handler
}
