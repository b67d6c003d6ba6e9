package app

import (
	"sync"
	"time"
)

// Timer is a recurring timer that can be stopped once
type Timer interface {
	Stop()
}

// TimerFactory starts a recurring timer that calls fire every interval
type TimerFactory func(interval time.Duration, fire func()) Timer

type tickerTimer struct {
	stopChan chan struct{}
	once     sync.Once
}

// NewTickerTimer runs fire on its own goroutine for every tick of a time.Ticker
func NewTickerTimer(interval time.Duration, fire func()) Timer {
	t := &tickerTimer{stopChan: make(chan struct{})}
	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-t.stopChan:
				return
			case <-ticker.C:
				fire()
			}
		}
	}()

	return t
}

// Stop does not block and may be called more than once
func (t *tickerTimer) Stop() {
	t.once.Do(func() { close(t.stopChan) })
}
