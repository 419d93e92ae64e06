package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	Mints     prometheus.Counter
	Transfers prometheus.Counter
	Burns     prometheus.Counter

	MembershipsIssued   prometheus.Counter
	MembershipsAccepted prometheus.Counter
	MembershipsDeclined prometheus.Counter
	MembershipsRevoked  prometheus.Counter

	EventsEmitted       prometheus.Counter
	DeliveriesFailed    prometheus.Counter
	ListenersRegistered prometheus.Counter

	TasksScheduled prometheus.Counter
	TasksFired     prometheus.Counter
	TaskFireErrors prometheus.Counter
	TasksCancelled prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	counter := func(name, help string) prometheus.Counter {
		return promauto.NewCounter(prometheus.CounterOpts{Name: name, Help: help})
	}
	return &Metrics{
		Mints:     counter("tokenhost_mints_total", "Total successful mint entries"),
		Transfers: counter("tokenhost_transfers_total", "Total successful transfer entries"),
		Burns:     counter("tokenhost_burns_total", "Total successful burns"),

		MembershipsIssued:   counter("tokenhost_memberships_issued_total", "Total memberships issued"),
		MembershipsAccepted: counter("tokenhost_memberships_accepted_total", "Total memberships accepted"),
		MembershipsDeclined: counter("tokenhost_memberships_declined_total", "Total memberships declined"),
		MembershipsRevoked:  counter("tokenhost_memberships_revoked_total", "Total memberships revoked"),

		EventsEmitted:       counter("tokenhost_events_emitted_total", "Total events broadcast to the bus"),
		DeliveriesFailed:    counter("tokenhost_event_deliveries_failed_total", "Total failed listener deliveries"),
		ListenersRegistered: counter("tokenhost_listeners_registered_total", "Total listener registrations"),

		TasksScheduled: counter("tokenhost_tasks_scheduled_total", "Total recurrent tasks scheduled"),
		TasksFired:     counter("tokenhost_tasks_fired_total", "Total recurrent task firings"),
		TaskFireErrors: counter("tokenhost_task_fire_errors_total", "Total recurrent task firings that failed"),
		TasksCancelled: counter("tokenhost_tasks_cancelled_total", "Total recurrent tasks cancelled"),
	}
}
