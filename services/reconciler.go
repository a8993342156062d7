package services

import (
	"time"

	"prompt-arena/models"

	"github.com/go-co-op/gocron/v2"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ReconcilerService periodically syncs purchases and payments that hold a
// provider reference but never reached a final status, covering webhooks the
// provider failed to deliver. It reuses the same transition logic as the
// webhook handlers, so a reconcile pass can never double-credit a wallet.
type ReconcilerService struct {
	DB       *gorm.DB
	Provider PaymentProvider
	Payments *PaymentService
	Credits  *CreditService

	sched gocron.Scheduler
}

func NewReconcilerService(db *gorm.DB, provider PaymentProvider, payments *PaymentService, credits *CreditService) *ReconcilerService {
	return &ReconcilerService{DB: db, Provider: provider, Payments: payments, Credits: credits}
}

// Statuses worth re-checking against the provider.
var reconcilableStatuses = []string{models.StatusPending, models.StatusOpen}

// Start schedules the reconcile job at the given interval.
func (s *ReconcilerService) Start(interval time.Duration) error {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return err
	}
	if _, err := sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(s.RunOnce),
	); err != nil {
		return err
	}
	sched.Start()
	s.sched = sched
	return nil
}

// Stop shuts the scheduler down.
func (s *ReconcilerService) Stop() {
	if s.sched != nil {
		_ = s.sched.Shutdown()
	}
}

// RunOnce performs a single reconcile pass.
func (s *ReconcilerService) RunOnce() {
	s.reconcilePurchases()
	s.reconcilePayments()
}

func (s *ReconcilerService) reconcilePurchases() {
	var purchases []models.CreditPurchase
	if err := s.DB.
		Where("provider_payment_id IS NOT NULL AND status IN ?", reconcilableStatuses).
		Find(&purchases).Error; err != nil {
		log.WithError(err).Error("reconciler: DB error listing purchases")
		return
	}
	for _, purchase := range purchases {
		fetched, err := s.Provider.GetPayment(*purchase.ProviderPaymentID)
		if err != nil {
			log.WithError(err).Warnf("reconciler: provider fetch failed for purchase %d", purchase.ID)
			continue
		}
		if err := s.Credits.ApplyProviderStatus(purchase.ID, fetched.Status); err != nil {
			log.WithError(err).Errorf("reconciler: failed to apply status for purchase %d", purchase.ID)
		}
	}
}

func (s *ReconcilerService) reconcilePayments() {
	var payments []models.Payment
	if err := s.DB.
		Where("provider_payment_id IS NOT NULL AND status IN ?", reconcilableStatuses).
		Find(&payments).Error; err != nil {
		log.WithError(err).Error("reconciler: DB error listing payments")
		return
	}
	for _, payment := range payments {
		fetched, err := s.Provider.GetPayment(*payment.ProviderPaymentID)
		if err != nil {
			log.WithError(err).Warnf("reconciler: provider fetch failed for payment %d", payment.ID)
			continue
		}
		if err := s.Payments.ApplyProviderStatus(payment.ID, fetched.Status); err != nil {
			log.WithError(err).Errorf("reconciler: failed to apply status for payment %d", payment.ID)
		}
	}
}
