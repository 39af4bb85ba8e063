package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/venturelink/venturelink-backend/internal/app/repository"
	"github.com/venturelink/venturelink-backend/pkg/logger"
)

// DocumentExpiryScheduler expires verified documents whose validity
// window has passed, so tiers reflect current paperwork.
type DocumentExpiryScheduler struct {
	cron         *cron.Cron
	documentRepo repository.DocumentRepository
	validity     time.Duration
}

func NewDocumentExpiryScheduler(documentRepo repository.DocumentRepository, validity time.Duration) *DocumentExpiryScheduler {
	return &DocumentExpiryScheduler{
		cron:         cron.New(),
		documentRepo: documentRepo,
		validity:     validity,
	}
}

func (s *DocumentExpiryScheduler) Start() error {
	// Daily at 03:00, off peak
	_, err := s.cron.AddFunc("0 3 * * *", s.runExpiry)
	if err != nil {
		logger.Error("Failed to add cron job for document expiry", err)
		return err
	}

	s.cron.Start()
	logger.Info("Document expiry scheduler started (daily at 3:00 AM)", nil)

	return nil
}

func (s *DocumentExpiryScheduler) Stop() {
	logger.Info("Stopping document expiry scheduler...", nil)
	s.cron.Stop()
	logger.Info("Document expiry scheduler stopped", nil)
}

func (s *DocumentExpiryScheduler) runExpiry() {
	cutoff := time.Now().Add(-s.validity)

	expired, err := s.documentRepo.ExpireVerifiedBefore(cutoff)
	if err != nil {
		logger.Error("Failed to expire stale documents", err)
		return
	}

	if expired > 0 {
		logger.Info("Expired stale verification documents", map[string]interface{}{
			"count":  expired,
			"cutoff": cutoff,
		})
	}
}
