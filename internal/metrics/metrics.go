package metrics

import (
	"context"
	"sync"

	"github.com/stylianoueleni/festival-engine/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

var (
	// Resale counters
	TicketsListed      *telemetry.Counter
	PurchasesRequested *telemetry.Counter
	PurchasesApproved  *telemetry.Counter
	PurchasesRejected  *telemetry.Counter
	RequestsExpired    *telemetry.Counter
	TicketsRelisted    *telemetry.Counter

	// Validation counters
	InvariantRejections *telemetry.Counter

	// Error tracking counters
	ErrorsTotal       *telemetry.Counter
	SlowRequestsTotal *telemetry.Counter

	// Histograms
	ResaleDecisionDuration *telemetry.Histogram
	RequestDuration        *telemetry.Histogram

	// Gauges
	PendingRequests *telemetry.UpDownCounter
	ActiveListings  *telemetry.UpDownCounter

	initOnce sync.Once
	initErr  error
)

// Init initializes all festival engine metrics
func Init() error {
	initOnce.Do(func() {
		initErr = initMetrics()
	})
	return initErr
}

func initMetrics() error {
	var err error

	TicketsListed, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "resale_tickets_listed_total",
		Description: "Total number of tickets listed for resale",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	PurchasesRequested, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "resale_purchase_requests_total",
		Description: "Total number of resale purchase requests",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	PurchasesApproved, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "resale_purchase_approvals_total",
		Description: "Total number of approved resale purchases",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	PurchasesRejected, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "resale_purchase_rejections_total",
		Description: "Total number of rejected resale purchases",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	RequestsExpired, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "resale_request_expirations_total",
		Description: "Total number of expired pending purchase requests",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	TicketsRelisted, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "resale_tickets_relisted_total",
		Description: "Total number of tickets returned to the available state",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	InvariantRejections, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "festival_invariant_rejections_total",
		Description: "Total number of writes rejected by invariant checks",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	// Histogram from request to seller decision
	ResaleDecisionDuration, err = telemetry.NewHistogramWithBuckets(telemetry.MetricOpts{
		Name:        "resale_decision_duration_seconds",
		Description: "Duration from purchase request to seller decision",
		Unit:        "s",
	}, []float64{1, 10, 60, 300, 1800, 3600, 14400, 43200, 86400}) // 1s to 24h
	if err != nil {
		return err
	}

	// Request duration histogram for latency tracking (p50, p90, p99)
	RequestDuration, err = telemetry.NewHistogramWithBuckets(telemetry.MetricOpts{
		Name:        "festival_request_duration_seconds",
		Description: "HTTP request duration in seconds",
		Unit:        "s",
	}, []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}) // 5ms to 10s
	if err != nil {
		return err
	}

	ErrorsTotal, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "festival_errors_total",
		Description: "Total number of errors by type",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	SlowRequestsTotal, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "festival_slow_requests_total",
		Description: "Total number of slow requests (>1s)",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	PendingRequests, err = telemetry.NewUpDownCounter(telemetry.MetricOpts{
		Name:        "resale_pending_requests",
		Description: "Current number of pending purchase requests",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	ActiveListings, err = telemetry.NewUpDownCounter(telemetry.MetricOpts{
		Name:        "resale_active_listings",
		Description: "Current number of tickets listed as available",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	return nil
}

// RecordListing records a ticket listed for resale
func RecordListing(ctx context.Context, eventID string) {
	if TicketsListed != nil {
		TicketsListed.Inc(ctx,
			attribute.String("event_id", eventID),
		)
	}
	if ActiveListings != nil {
		ActiveListings.Inc(ctx)
	}
}

// RecordPurchaseRequest records a new pending purchase request
func RecordPurchaseRequest(ctx context.Context, ticketID string) {
	if PurchasesRequested != nil {
		PurchasesRequested.Inc(ctx,
			attribute.String("ticket_id", ticketID),
		)
	}
	if PendingRequests != nil {
		PendingRequests.Inc(ctx)
	}
}

// RecordApproval records an approved resale purchase. pendingResolved is the
// number of pending requests resolved by the approval, including the approved
// one and any rejected competitors.
func RecordApproval(ctx context.Context, ticketID string, pendingResolved int64, decisionSeconds float64) {
	if PurchasesApproved != nil {
		PurchasesApproved.Inc(ctx,
			attribute.String("ticket_id", ticketID),
		)
	}
	if ResaleDecisionDuration != nil {
		ResaleDecisionDuration.Record(ctx, decisionSeconds,
			attribute.String("outcome", "approved"),
		)
	}
	if PendingRequests != nil {
		PendingRequests.Add(ctx, -pendingResolved)
	}
	if ActiveListings != nil {
		ActiveListings.Dec(ctx)
	}
}

// RecordRejection records a rejected resale purchase request
func RecordRejection(ctx context.Context, ticketID string, decisionSeconds float64) {
	if PurchasesRejected != nil {
		PurchasesRejected.Inc(ctx,
			attribute.String("ticket_id", ticketID),
		)
	}
	if ResaleDecisionDuration != nil {
		ResaleDecisionDuration.Record(ctx, decisionSeconds,
			attribute.String("outcome", "rejected"),
		)
	}
	if PendingRequests != nil {
		PendingRequests.Dec(ctx)
	}
}

// RecordExpiration records expired pending requests for a ticket
func RecordExpiration(ctx context.Context, ticketID string, count int64) {
	if RequestsExpired != nil {
		RequestsExpired.Add(ctx, count,
			attribute.String("ticket_id", ticketID),
		)
	}
	if PendingRequests != nil {
		PendingRequests.Add(ctx, -count)
	}
}

// RecordRelisting records a ticket returning to the available state
func RecordRelisting(ctx context.Context, ticketID string) {
	if TicketsRelisted != nil {
		TicketsRelisted.Inc(ctx,
			attribute.String("ticket_id", ticketID),
		)
	}
}

// RecordInvariantRejection records a write rejected by an invariant check
func RecordInvariantRejection(ctx context.Context, check, operation string) {
	if InvariantRejections != nil {
		InvariantRejections.Inc(ctx,
			attribute.String("check", check),
			attribute.String("operation", operation),
		)
	}
}

// RecordError records an error by type and operation
func RecordError(ctx context.Context, errorType, operation string) {
	if ErrorsTotal != nil {
		ErrorsTotal.Inc(ctx,
			attribute.String("error_type", errorType),
			attribute.String("operation", operation),
		)
	}
}

// RecordRequestDuration records HTTP request duration and tracks slow requests
func RecordRequestDuration(ctx context.Context, operation string, durationSeconds float64) {
	if RequestDuration != nil {
		RequestDuration.Record(ctx, durationSeconds,
			attribute.String("operation", operation),
		)
	}
	if durationSeconds > 1.0 && SlowRequestsTotal != nil {
		SlowRequestsTotal.Inc(ctx,
			attribute.String("operation", operation),
		)
	}
}
