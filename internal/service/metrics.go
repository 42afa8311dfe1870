package service

import "github.com/prometheus/client_golang/prometheus"

var (
	slotWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "timeslot_writes_total", Help: "Successful time slot writes"},
		[]string{"op"},
	)
	slotConflicts = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "timeslot_conflicts_total", Help: "Writes rejected by the overlap check"},
		[]string{"op"},
	)
)

func init() { prometheus.MustRegister(slotWrites, slotConflicts) }
