package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/kitforge-id/kitforge/internal/auth"
	jobmetrics "github.com/kitforge-id/kitforge/internal/jobs"
	"github.com/kitforge-id/kitforge/internal/orders"
	"github.com/kitforge-id/kitforge/internal/orders/board"
)

// DueScanJob walks active orders once a day and emails reminders for anything
// overdue or due today.
type DueScanJob struct {
	orders   *orders.OrderService
	profiles auth.Repository
	client   *Client
	loc      *time.Location
	logger   *slog.Logger
	metrics  *jobmetrics.Metrics
	now      func() time.Time
}

// NewDueScanJob constructs the due-date scan job.
func NewDueScanJob(orderService *orders.OrderService, profiles auth.Repository, client *Client, loc *time.Location, logger *slog.Logger, metrics *jobmetrics.Metrics) *DueScanJob {
	return &DueScanJob{
		orders:   orderService,
		profiles: profiles,
		client:   client,
		loc:      loc,
		logger:   logger,
		metrics:  metrics,
		now:      time.Now,
	}
}

// idr formats minor units as a grouped rupiah amount for email bodies.
var idr = message.NewPrinter(language.Indonesian)

func formatIDR(cents int64) string {
	return idr.Sprintf("Rp%d", cents)
}

// Handle scans active orders and enqueues one reminder email per order that
// is overdue or due today.
func (j *DueScanJob) Handle(ctx context.Context, _ *asynq.Task) error {
	tracker := j.metrics.Track("orders_due_scan")

	list, err := j.orders.ActiveOrders(ctx)
	if err != nil {
		return tracker.End(fmt.Errorf("due scan: list orders: %w", err))
	}

	now := j.now()
	overdue := 0
	reminded := 0
	for _, o := range list {
		_, urgency, days := board.Classify(o, now, j.loc)
		if urgency == board.UrgencyOverdue {
			overdue++
		}
		if urgency != board.UrgencyOverdue && urgency != board.UrgencyDueToday {
			continue
		}

		profile, err := j.profiles.Get(ctx, o.ClientID)
		if err != nil {
			j.logger.Warn("due scan profile", slog.Any("error", err), slog.Int64("order_id", o.ID))
			continue
		}

		payload := reminderEmail(o, profile, urgency, days, j.loc)
		if _, err := j.client.EnqueueSendEmail(ctx, payload); err != nil {
			j.logger.Warn("due scan enqueue", slog.Any("error", err), slog.Int64("order_id", o.ID))
			continue
		}
		reminded++
	}

	j.metrics.SetOverdue(overdue)
	j.logger.Info("due scan finished",
		slog.Int("active_orders", len(list)),
		slog.Int("overdue", overdue),
		slog.Int("reminders", reminded))
	return tracker.End(nil)
}

func reminderEmail(o orders.Order, profile *auth.Profile, urgency string, daysUntilDue int, loc *time.Location) SendEmailPayload {
	due := board.DueDate(o, loc).Format("2 January 2006")
	amount := formatIDR(o.EstimatedPriceCents)

	var subject, lead string
	if urgency == board.UrgencyOverdue {
		subject = fmt.Sprintf("Order #%d is %d day(s) overdue", o.ID, -daysUntilDue)
		lead = fmt.Sprintf("Order #%d was due on %s and is still %s.", o.ID, due, o.Status)
	} else {
		subject = fmt.Sprintf("Order #%d is due today", o.ID)
		lead = fmt.Sprintf("Order #%d is due today (%s) and is currently %s.", o.ID, due, o.Status)
	}

	body := fmt.Sprintf("Hi %s,\n\n%s\nEstimated total: %s.\n\nKitForge Studio", profile.FullName, lead, amount)
	return SendEmailPayload{To: profile.Email, Subject: subject, Body: body}
}
