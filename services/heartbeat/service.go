// Package heartbeat publishes a retained liveness beacon so bus clients
// can tell a silent device from a dead one.
package heartbeat

import (
	"context"
	"time"

	"panelfw-go/bus"
	"panelfw-go/types"
	"panelfw-go/x/timex"
)

type Service struct{}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection) {
	cfgSub := conn.Subscribe(bus.T("config", "heartbeat"))
	defer conn.Unsubscribe(cfgSub)

	start := time.Now()
	tick := time.NewTicker(1 * time.Second)
	defer tick.Stop()

	publish := func() {
		conn.Publish(conn.NewMessage(bus.T("sys", "heartbeat"), types.Heartbeat{
			UptimeS: int64(time.Since(start) / time.Second),
			TSms:    timex.NowMs(),
		}, true))
	}
	publish()

	for {
		select {
		case <-ctx.Done():
			println("Info: heartbeat service stopping")
			return
		case <-tick.C:
			publish()
		case msg := <-cfgSub.Channel():
			cfg, ok := msg.Payload.(types.HeartbeatConfig)
			if !ok || cfg.IntervalS <= 0 {
				continue
			}
			tick.Reset(time.Duration(cfg.IntervalS) * time.Second)
			println("Info: heartbeat interval set to", cfg.IntervalS, "seconds")
		}
	}
}

// Start the heartbeat service.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	go s.serviceLoop(ctx, conn)
	return nil
}
