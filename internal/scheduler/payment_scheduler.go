package scheduler

import (
	"context"
	"time"

	"github.com/gustavo180591/ecommerce-zapatillas/internal/app/service"
	"github.com/gustavo180591/ecommerce-zapatillas/pkg/logger"
	"github.com/robfig/cron/v3"
)

// staleAfter is how long an order may sit waiting on its provider before
// the sweeper starts polling for it. Short enough to catch missed
// webhooks quickly, long enough to skip orders still mid-checkout.
const staleAfter = 15 * time.Minute

// PaymentScheduler periodically reconciles orders stuck waiting on a
// payment provider, covering for webhook deliveries that never arrived.
type PaymentScheduler struct {
	cron             *cron.Cron
	cronSpec         string
	reconcileService service.ReconcileService
}

func NewPaymentScheduler(cronSpec string, reconcileService service.ReconcileService) *PaymentScheduler {
	return &PaymentScheduler{
		cron:             cron.New(),
		cronSpec:         cronSpec,
		reconcileService: reconcileService,
	}
}

func (s *PaymentScheduler) Start() error {
	_, err := s.cron.AddFunc(s.cronSpec, func() {
		logger.Info("Starting scheduled payment reconciliation sweep", nil)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		if err := s.reconcileService.SweepStaleOrders(ctx, staleAfter); err != nil {
			logger.Error("Payment reconciliation sweep failed", err)
			return
		}

		logger.Info("Payment reconciliation sweep finished", nil)
	})
	if err != nil {
		logger.Error("Failed to add cron job for payment reconciliation", err)
		return err
	}

	s.cron.Start()
	logger.Info("Payment scheduler started", map[string]interface{}{
		"cron": s.cronSpec,
	})
	return nil
}

func (s *PaymentScheduler) Stop() {
	logger.Info("Stopping payment scheduler...", nil)
	s.cron.Stop()
	logger.Info("Payment scheduler stopped", nil)
}
