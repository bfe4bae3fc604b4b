//go:build rp2040

// Firmware entry point for the Pico front panel: two debounced buttons
// on GPIO14/15 driving the backlight PWM on GPIO16, the mode indicator
// on GPIO17, an SSD1306 status display on I2C0, and a command console
// on UART0.
package main

import (
	"context"
	"machine"
	"time"

	"github.com/jangala-dev/tinygo-uartx/uartx"

	"panelfw-go/bus"
	"panelfw-go/services/config"
	"panelfw-go/services/console"
	"panelfw-go/services/hal"
	"panelfw-go/services/heartbeat"
	"panelfw-go/x/fmtx"
)

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)
	println("boot")
	fmtx.DefaultOutput = machine.Serial

	ctx := context.WithValue(context.Background(), config.CtxDeviceKey, "pico-panel")
	b := bus.NewBus(4)

	go hal.Run(ctx, b.NewConnection("hal"))
	if err := (&heartbeat.Service{}).Start(ctx, b.NewConnection("heartbeat")); err != nil {
		println("[main] heartbeat failed:", err.Error())
	}
	config.NewConfigService().Start(ctx, b.NewConnection("config"))

	uart := uartx.UART0
	if err := uart.Configure(uartx.UARTConfig{
		BaudRate: 115_200,
		TX:       machine.GPIO0,
		RX:       machine.GPIO1,
	}); err != nil {
		println("[main] uart configure failed:", err.Error())
	} else {
		console.New(b.NewConnection("console"), uart).Start(ctx)
	}

	select {}
}
