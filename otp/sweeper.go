package otp

import (
	"context"
	"time"

	"github.com/Kotlang/clinicAuthGo/logger"
	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

// Sweeper periodically purges stale records from an OtpStore.
type Sweeper struct {
	scheduler *gocron.Scheduler
}

func NewSweeper(store *OtpStore, every time.Duration) (*Sweeper, error) {
	scheduler := gocron.NewScheduler(time.UTC)
	scheduler.SingletonModeAll()

	_, err := scheduler.Every(every).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		deleted, err := store.Purge(ctx)
		if err != nil {
			logger.Error("Failed purging otp records", zap.Error(err))
			return
		}
		if deleted > 0 {
			logger.Debug("Purged otp records", zap.Int64("count", deleted))
		}
	})
	if err != nil {
		return nil, err
	}

	return &Sweeper{scheduler: scheduler}, nil
}

func (s *Sweeper) Start() {
	s.scheduler.StartAsync()
}

func (s *Sweeper) Stop() {
	s.scheduler.Stop()
}
