package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestSchedulerMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewSchedulerMetrics(reg)

	m.ObserveBooking("success")
	m.ObserveBooking("success")
	m.ObserveBooking("conflict")
	m.ObserveRelease("success")
	m.ObservePublication("created", 4)
	m.ObservePublication("extended", 2)
	m.AddPassed(3)
	m.AddPassed(0)
	m.AddArchived(5)
	m.ObserveJob("archive", 150*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.bookings.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.bookings.WithLabelValues("conflict")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.releases.WithLabelValues("success")))
	assert.Equal(t, 6.0, testutil.ToFloat64(m.slotsGenerated))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.slotsPassed))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.slotsArchived))
}

func TestSchedulerMetricsNilSafe(t *testing.T) {
	var m *SchedulerMetrics
	m.ObserveBooking("success")
	m.ObserveRelease("conflict")
	m.ObservePublication("created", 1)
	m.AddPassed(1)
	m.AddArchived(1)
	m.ObserveJob("archive", time.Second)
}
