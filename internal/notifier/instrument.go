package notifier

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

// InstrumentedNotifier counts delivery outcomes around another Notifier.
type InstrumentedNotifier struct {
	next     Notifier
	outcomes *prometheus.CounterVec
}

func WithMetrics(next Notifier, outcomes *prometheus.CounterVec) *InstrumentedNotifier {
	return &InstrumentedNotifier{next: next, outcomes: outcomes}
}

func (n *InstrumentedNotifier) Notify(ctx context.Context, recipient, subject, body string) error {
	err := n.next.Notify(ctx, recipient, subject, body)
	if err != nil {
		n.outcomes.WithLabelValues("failed").Inc()
		return err
	}
	n.outcomes.WithLabelValues("sent").Inc()
	return nil
}
