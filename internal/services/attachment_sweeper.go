package services

import (
	"time"

	"go.uber.org/zap"
)

// AttachmentSweeper runs the expiry sweep on a fixed interval.
type AttachmentSweeper struct {
	interval time.Duration
	stopChan chan struct{}
}

func NewAttachmentSweeper(interval time.Duration) *AttachmentSweeper {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &AttachmentSweeper{
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start blocks, sweeping once immediately and then on every tick. Run it in
// its own goroutine.
func (s *AttachmentSweeper) Start() {
	s.sweep()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopChan:
			return
		}
	}
}

func (s *AttachmentSweeper) Stop() {
	close(s.stopChan)
}

func (s *AttachmentSweeper) sweep() {
	removed, err := SweepExpiredAttachments()
	if err != nil {
		zap.L().Error("attachment sweep failed", zap.Error(err))
		return
	}
	if removed > 0 {
		zap.L().Info("attachment sweep finished", zap.Int("removed", removed))
	}
}
