package realtime

import (
	"context"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

// Listen relays NOTIFY payloads on Channel into hub until ctx is cancelled.
func Listen(ctx context.Context, dsn string, hub *Hub, log *logrus.Logger) error {
	listener := pq.NewListener(dsn, 10*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			log.WithError(err).WithField("event", ev).Warn("realtime listener connection event")
		}
	})
	defer listener.Close()

	if err := listener.Listen(Channel); err != nil {
		return fmt.Errorf("listen %s: %w", Channel, err)
	}
	log.WithField("channel", Channel).Info("realtime listener started")

	relay(ctx, listener.Notify, listener.Ping, hub, log)
	return nil
}

func relay(ctx context.Context, notify <-chan *pq.Notification, ping func() error, hub *Hub, log *logrus.Logger) {
	ticker := time.NewTicker(90 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-notify:
			if !ok {
				return
			}
			// nil after a reconnect
			if n == nil {
				hub.Publish(Change{Table: ResyncTable, Event: "RESYNC"})
				continue
			}
			c, err := DecodeChange(n.Extra)
			if err != nil {
				log.WithError(err).Warn("ignoring malformed table change")
				continue
			}
			hub.Publish(c)
		case <-ticker.C:
			go func() {
				if err := ping(); err != nil {
					log.WithError(err).Warn("realtime listener ping failed")
				}
			}()
		}
	}
}
