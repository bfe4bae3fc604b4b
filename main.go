//go:build !rp2040

// Host entry point: runs the full service stack against the in-memory
// platform so the panel firmware can be exercised without hardware.
package main

import (
	"context"
	"os"
	"os/signal"

	"panelfw-go/bus"
	"panelfw-go/services/config"
	"panelfw-go/services/console"
	"panelfw-go/services/hal"
	"panelfw-go/services/heartbeat"
)

func printTopic(prefix string, t bus.Topic) {
	print(prefix, " ")
	for i := 0; i < t.Len(); i++ {
		if i > 0 {
			print("/")
		}
		switch v := t.At(i).(type) {
		case string:
			print(v)
		case int:
			print(v)
		default:
			print("?")
		}
	}
	println()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = context.WithValue(ctx, config.CtxDeviceKey, "pico-panel")

	println("[main] bootstrapping bus")
	b := bus.NewBus(8)

	// Diagnostics: mirror all HAL traffic to stdout.
	mon := b.NewConnection("monitor").Subscribe(bus.T("hal", "#"))
	go func() {
		for m := range mon.Channel() {
			printTopic("[monitor] <-", m.Topic)
		}
	}()

	println("[main] starting services")
	go hal.Run(ctx, b.NewConnection("hal"))
	if err := (&heartbeat.Service{}).Start(ctx, b.NewConnection("heartbeat")); err != nil {
		println("[main] heartbeat failed:", err.Error())
	}
	config.NewConfigService().Start(ctx, b.NewConnection("config"))

	// Same command shell the UART carries on hardware, over stdin/stdout.
	console.New(b.NewConnection("console"), newStdioPort(os.Stdin, os.Stdout)).Start(ctx)

	<-ctx.Done()
	println("[main] shutting down")
}
