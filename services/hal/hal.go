// Package hal runs the hardware abstraction service. It listens for a
// configuration on the bus, builds the configured devices against the
// platform's resource registry, and bridges device telemetry and
// control verbs to capability topics.
package hal

import (
	"context"

	"panelfw-go/bus"
	"panelfw-go/services/hal/internal/core"
	"panelfw-go/services/hal/internal/platform"

	// Device builders self-register.
	_ "panelfw-go/services/hal/devices/display_out"
	_ "panelfw-go/services/hal/devices/frontpanel"
	_ "panelfw-go/services/hal/devices/gpio_button"
	_ "panelfw-go/services/hal/devices/gpio_dout"
	_ "panelfw-go/services/hal/devices/pwm_out"
)

// Run blocks until ctx is cancelled.
func Run(ctx context.Context, conn *bus.Connection) {
	runWith(ctx, conn, platform.New())
}

func runWith(ctx context.Context, conn *bus.Connection, reg *platform.Registry) {
	h := core.NewHAL(conn, core.Resources{Reg: reg})
	h.Run(ctx)
}
