package scheduler

import (
	"io"
	"log"
	"net/http"
	"time"

	"github.com/go-co-op/gocron"
)

// KeepAlive periodically pings the liveness URL so free-tier hosting does
// not idle the instance out between conversations.
type KeepAlive struct {
	scheduler *gocron.Scheduler
	client    *http.Client
	url       string
	interval  time.Duration
}

// NewKeepAlive creates a KeepAlive. An interval <= 0 disables it.
func NewKeepAlive(client *http.Client, url string, interval time.Duration) *KeepAlive {
	return &KeepAlive{
		scheduler: gocron.NewScheduler(time.UTC),
		client:    client,
		url:       url,
		interval:  interval,
	}
}

// Start schedules the periodic ping and starts the underlying scheduler.
// Ping failures are logged, never fatal.
func (k *KeepAlive) Start() error {
	if k.interval <= 0 {
		log.Println("keepalive: disabled")
		return nil
	}

	_, err := k.scheduler.Every(k.interval).Do(func() {
		resp, err := k.client.Get(k.url)
		if err != nil {
			log.Printf("keepalive: ping %s failed: %v", k.url, err)
			return
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	})
	if err != nil {
		return err
	}

	k.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future pings.
func (k *KeepAlive) Stop() {
	if k.scheduler != nil {
		k.scheduler.Stop()
	}
}
