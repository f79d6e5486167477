package services

import (
	"context"
	"sync"
	"time"

	"github.com/yeremiapane/reservation-app/utils"
)

// Releaser frees lapsed table bindings.
type Releaser interface {
	ReleaseExpired(ctx context.Context) (int, error)
}

// SweepMonitor periodically releases expired table assignments.
type SweepMonitor struct {
	releaser Releaser
	Interval time.Duration
	StopChan chan struct{}
	done     chan struct{}
	once     sync.Once
}

func NewSweepMonitor(releaser Releaser, interval time.Duration) *SweepMonitor {
	return &SweepMonitor{
		releaser: releaser,
		Interval: interval,
		StopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the sweep loop. A non-positive interval disables it.
func (m *SweepMonitor) Start() {
	if m.Interval <= 0 {
		utils.InfoLogger.Info("sweep monitor disabled")
		close(m.done)
		return
	}

	go func() {
		defer close(m.done)
		ticker := time.NewTicker(m.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				m.sweep()
			case <-m.StopChan:
				return
			}
		}
	}()
	utils.InfoLogger.Infof("sweep monitor started (interval=%s)", m.Interval)
}

// Stop ends the loop and waits for an in-flight sweep to finish.
func (m *SweepMonitor) Stop() {
	m.once.Do(func() {
		close(m.StopChan)
		<-m.done
	})
}

func (m *SweepMonitor) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), m.Interval)
	defer cancel()

	n, err := m.releaser.ReleaseExpired(ctx)
	if err != nil {
		utils.ErrorLogger.Errorf("sweep expired assignments: %v", err)
		return
	}
	if n > 0 {
		utils.InfoLogger.Infof("released %d expired table assignment(s)", n)
	}
}
