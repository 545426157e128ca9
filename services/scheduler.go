// services/scheduler.go
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"salonbook-backend/utils"
)

// DailySummaryJob texts the owner the day's figures on a cron schedule.
type DailySummaryJob struct {
	summaries     *SummaryService
	notifications *NotificationService
	ownerPhone    string
	logger        *slog.Logger
	now           func() time.Time

	cron *cron.Cron
}

func NewDailySummaryJob(summaries *SummaryService, notifications *NotificationService, ownerPhone string, logger *slog.Logger) *DailySummaryJob {
	return &DailySummaryJob{
		summaries:     summaries,
		notifications: notifications,
		ownerPhone:    ownerPhone,
		logger:        logger.With("component", "daily_summary"),
		now:           time.Now,
	}
}

// Start schedules the job with a standard five field spec evaluated in the
// report timezone.
func (j *DailySummaryJob) Start(spec string) error {
	c := cron.New(cron.WithLocation(j.summaries.Location()))
	if _, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := j.RunOnce(ctx); err != nil {
			j.logger.Error("daily summary run failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("schedule daily summary %q: %w", spec, err)
	}

	c.Start()
	j.cron = c
	j.logger.Info("daily summary scheduler started", "spec", spec)
	return nil
}

// Stop waits for a running job to finish.
func (j *DailySummaryJob) Stop() {
	if j.cron == nil {
		return
	}
	<-j.cron.Stop().Done()
}

// RunOnce builds today's summary and sends it to the owner.
func (j *DailySummaryJob) RunOnce(ctx context.Context) error {
	if j.ownerPhone == "" {
		j.logger.WarnContext(ctx, "daily summary skipped: OWNER_PHONE not set")
		return nil
	}

	loc := j.summaries.Location()
	today := utils.DayKey(j.now(), loc)

	summary, err := j.summaries.Summary(ctx, today, today)
	if err != nil {
		return fmt.Errorf("summary for %s: %w", today, err)
	}
	return j.notifications.SendDailySummary(ctx, j.ownerPhone, today, summary)
}
