package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SchedulerMetrics счётчики движка расписаний; nil-получатель ничего не делает
type SchedulerMetrics struct {
	bookings       *prometheus.CounterVec
	releases       *prometheus.CounterVec
	publications   *prometheus.CounterVec
	slotsGenerated prometheus.Counter
	slotsPassed    prometheus.Counter
	slotsArchived  prometheus.Counter
	jobDuration    *prometheus.HistogramVec
}

func NewSchedulerMetrics(reg prometheus.Registerer) *SchedulerMetrics {
	m := &SchedulerMetrics{
		bookings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic_scheduler",
			Name:      "bookings_total",
			Help:      "Appointment booking attempts by result",
		}, []string{"result"}),
		releases: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic_scheduler",
			Name:      "releases_total",
			Help:      "Appointment release attempts by result",
		}, []string{"result"}),
		publications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic_scheduler",
			Name:      "schedule_publications_total",
			Help:      "Published day schedules by merge outcome",
		}, []string{"outcome"}),
		slotsGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clinic_scheduler",
			Name:      "slots_generated_total",
			Help:      "Time slots created by schedule publication",
		}),
		slotsPassed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clinic_scheduler",
			Name:      "slots_passed_total",
			Help:      "Time slots moved to passed status",
		}),
		slotsArchived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clinic_scheduler",
			Name:      "archived_slots_total",
			Help:      "Time slots moved to the archive",
		}),
		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "clinic_scheduler",
			Name:      "job_duration_seconds",
			Help:      "Duration of background jobs",
			Buckets:   prometheus.DefBuckets,
		}, []string{"job"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.bookings, m.releases, m.publications, m.slotsGenerated, m.slotsPassed, m.slotsArchived, m.jobDuration)
	return m
}

func (m *SchedulerMetrics) ObserveBooking(result string) {
	if m == nil {
		return
	}
	m.bookings.WithLabelValues(result).Inc()
}

func (m *SchedulerMetrics) ObserveRelease(result string) {
	if m == nil {
		return
	}
	m.releases.WithLabelValues(result).Inc()
}

func (m *SchedulerMetrics) ObservePublication(outcome string, slotsCreated int) {
	if m == nil {
		return
	}
	m.publications.WithLabelValues(outcome).Inc()
	m.slotsGenerated.Add(float64(slotsCreated))
}

func (m *SchedulerMetrics) AddPassed(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.slotsPassed.Add(float64(n))
}

func (m *SchedulerMetrics) AddArchived(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.slotsArchived.Add(float64(n))
}

func (m *SchedulerMetrics) ObserveJob(job string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.jobDuration.WithLabelValues(job).Observe(elapsed.Seconds())
}
