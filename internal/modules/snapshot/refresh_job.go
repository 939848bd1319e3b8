package snapshot

import (
	"github.com/rs/zerolog"

	"github.com/asimoes/retrosim/internal/domain"
	"github.com/asimoes/retrosim/internal/timeseries"
)

// RefreshJob periodically captures a snapshot for the current day so
// simulations dated today have prices without an on-demand fetch.
type RefreshJob struct {
	capture   *CaptureService
	companies []domain.Company
	log       zerolog.Logger
}

// NewRefreshJob creates a new snapshot refresh job
func NewRefreshJob(capture *CaptureService, companies []domain.Company, log zerolog.Logger) *RefreshJob {
	return &RefreshJob{
		capture:   capture,
		companies: companies,
		log:       log.With().Str("component", "snapshot_refresh").Logger(),
	}
}

// Name returns the job name
func (j *RefreshJob) Name() string {
	return "snapshot_refresh"
}

// Run captures today's closes for the configured universe.
func (j *RefreshJob) Run() error {
	today := timeseries.Today()

	_, messages, err := j.capture.Capture(today, j.companies)
	if err != nil {
		return err
	}
	for _, msg := range messages {
		j.log.Warn().Str("date", today.String()).Msg(msg.Text)
	}
	return nil
}
