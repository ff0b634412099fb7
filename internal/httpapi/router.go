package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type RouterConfig struct {
	CORSOrigins []string
	// BookingRateLimit запросов в минуту с одного IP на бронирование и отмену
	BookingRateLimit int
	// Gatherer источник метрик для /metrics; nil значит prometheus.DefaultGatherer
	Gatherer prometheus.Gatherer
}

func NewRouter(h *Handler, cfg RouterConfig, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	bookingLimit := cfg.BookingRateLimit
	if bookingLimit <= 0 {
		bookingLimit = 20
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/schedules", func(r chi.Router) {
			r.Get("/", h.publicSchedules)
			r.Route("/physicians/{physicianID}", func(r chi.Router) {
				r.Post("/", h.generateSchedules)
				r.Get("/", h.privateSchedules)
				r.Patch("/days/{date}/inactivate", h.inactivateDay)
				r.Delete("/future", h.retireFutureSchedules)
			})
		})

		r.Route("/appointments/{slotID}", func(r chi.Router) {
			r.Use(httprate.LimitByIP(bookingLimit, time.Minute))
			r.Patch("/", h.makeAppointment)
			r.Delete("/", h.releaseAppointment)
		})

		r.Patch("/timeslots/{slotID}/inactivate", h.inactivateSlot)
		r.Get("/patients/{patientID}/appointments", h.patientAppointments)

		r.Route("/clinics/{clinicID}/workdays", func(r chi.Router) {
			r.Get("/", h.listWorkdays)
			r.Put("/{weekday}", h.setWorkday)
		})

		r.Post("/admin/archive", h.runArchive)
		r.Get("/physicians/{physicianID}/archive", h.listArchive)
	})

	return r
}
