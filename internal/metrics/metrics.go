package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Counters for the session lifecycle and the submission gate, exposed on
// /metrics alongside the default process collectors.
var (
	SessionsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "qrattend_sessions_created_total",
		Help: "Sessions created by administrators",
	})
	SessionsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "qrattend_sessions_deleted_total",
		Help: "Sessions deleted, attendee cascade included",
	})
	SubmissionsAccepted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "qrattend_submissions_accepted_total",
		Help: "Attendance submissions that produced a record",
	})
	SubmissionsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "qrattend_submissions_rejected_total",
		Help: "Attendance submissions rejected before any write",
	}, []string{"reason"})
	OrphansSwept = promauto.NewCounter(prometheus.CounterOpts{
		Name: "qrattend_orphan_attendees_swept_total",
		Help: "Attendee records removed by the cleanup worker",
	})
)

// Rejection reasons used as the label value on SubmissionsRejected.
const (
	ReasonExpired  = "expired"
	ReasonNotFound = "not_found"
	ReasonInvalid  = "invalid"
)
