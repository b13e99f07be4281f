// Package scheduler runs periodic background jobs. Currently the only job is
// the overdue sweep, which stores the OVERDUE transition for reservations and
// fee transactions past their due date. Reads additionally derive overdue
// status on the fly, so the sweep cadence is not correctness-critical.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/derkdev976-web/davel-library-sub001/internal/entities"
	"github.com/derkdev976-web/davel-library-sub001/internal/fees"
	"github.com/derkdev976-web/davel-library-sub001/internal/reservations"
)

// OverdueSweeper periodically transitions overdue reservations and fees.
type OverdueSweeper struct {
	db           *gorm.DB
	reservations *reservations.Manager
	fees         *fees.Engine
	schedule     string

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.Mutex
	isRunning  bool
	isSweeping bool
}

// NewOverdueSweeper creates a sweeper with a standard 5-field cron schedule.
func NewOverdueSweeper(db *gorm.DB, manager *reservations.Manager, engine *fees.Engine, schedule string) *OverdueSweeper {
	return &OverdueSweeper{
		db:           db,
		reservations: manager,
		fees:         engine,
		schedule:     schedule,
		cron:         cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler.
func (s *OverdueSweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		s.runOnce(ctx)
	})
	if err != nil {
		return fmt.Errorf("invalid sweep schedule '%s': %w", s.schedule, err)
	}
	s.entryID = entryID

	s.cron.Start()
	s.isRunning = true
	log.Printf("Overdue sweep scheduler started with schedule '%s'", s.schedule)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop halts the scheduler, waiting for a running sweep to finish.
func (s *OverdueSweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.isRunning = false
	log.Printf("Overdue sweep scheduler stopped")
}

// runOnce guards against overlapping sweeps when a sweep outlasts the
// schedule interval.
func (s *OverdueSweeper) runOnce(ctx context.Context) {
	s.mu.Lock()
	if s.isSweeping {
		s.mu.Unlock()
		log.Printf("Overdue sweep already in progress, skipping")
		return
	}
	s.isSweeping = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isSweeping = false
		s.mu.Unlock()
	}()

	loans, feesMarked, err := s.Sweep(ctx, time.Now())
	if err != nil {
		log.Printf("Overdue sweep failed: %v", err)
		return
	}
	if loans > 0 || feesMarked > 0 {
		log.Printf("Overdue sweep: %d reservations and %d fee transactions marked overdue", loans, feesMarked)
	}
}

// Sweep marks every ACTIVE reservation and PENDING fee transaction past its
// due date as OVERDUE. Each row is transitioned with a guarded conditional
// write, so rows settled between the query and the write are skipped cleanly.
func (s *OverdueSweeper) Sweep(ctx context.Context, now time.Time) (loans int, feeTransactions int, err error) {
	var dueReservations []entities.Reservation
	err = s.db.Where("status = ? AND due_date < ?", entities.ReservationStatusActive, now).
		Find(&dueReservations).Error
	if err != nil {
		return 0, 0, fmt.Errorf("query overdue reservations: %w", err)
	}

	for _, reservation := range dueReservations {
		marked, err := s.reservations.MarkOverdue(ctx, reservation.ID, now)
		if err != nil {
			log.Printf("Failed to mark reservation %d overdue: %v", reservation.ID, err)
			continue
		}
		if marked {
			loans++
		}
	}

	var dueFees []entities.FeeTransaction
	err = s.db.Where("status = ? AND due_date < ?", entities.FeeStatusPending, now).
		Find(&dueFees).Error
	if err != nil {
		return loans, 0, fmt.Errorf("query overdue fees: %w", err)
	}

	for _, transaction := range dueFees {
		marked, err := s.fees.MarkOverdue(ctx, transaction.ID, now)
		if err != nil {
			log.Printf("Failed to mark fee transaction %d overdue: %v", transaction.ID, err)
			continue
		}
		if marked {
			feeTransactions++
		}
	}

	return loans, feeTransactions, nil
}
