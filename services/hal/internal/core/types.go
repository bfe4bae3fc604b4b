package core

import (
	"context"

	"panelfw-go/errcode"
	"panelfw-go/types"
)

// ---- Capability & device model ----

// CapAddr identifies one public capability on the bus.
type CapAddr struct {
	Domain string
	Kind   string
	Name   string
}

type CapabilitySpec struct {
	Domain string
	Kind   types.Kind
	Name   string
	Info   types.Info
}

type Device interface {
	ID() string
	Capabilities() []CapabilitySpec
	Init(ctx context.Context) error
	Control(addr CapAddr, verb string, payload any) (EnqueueResult, error)
	Close() error // release claimed resources
}

// EnqueueResult reports the outcome of a control verb.
type EnqueueResult struct {
	OK    bool
	Error errcode.Code
}

// ---- Device → HAL telemetry (single shape) ----
// By default, an Event represents a "value-like" update for a capability
// that HAL publishes to .../value (retained). If IsEvent is true, HAL
// instead publishes to .../event (non-retained). Err, when non-empty,
// causes HAL to publish only .../status=degraded (retained).

type Event struct {
	Addr     CapAddr
	Payload  any
	TSms     int64
	Err      string // "not_ready","io_error","unsupported",...
	IsEvent  bool
	EventTag string // optional subtopic tag for events (e.g. "pressed")
}

// EventEmitter is how devices hand telemetry to the HAL.
type EventEmitter interface {
	// Emit tries to enqueue an Event for HAL publication.
	// It must be non-blocking; false indicates a drop under pressure.
	Emit(ev Event) bool
}

// ---- HAL-injected resources ----

type Resources struct {
	Reg ResourceRegistry
	Pub EventEmitter // provided by HAL; devices use it to emit values/events
}

// Builder input
type BuilderInput struct {
	ID, Type string
	Params   any
	Res      Resources
}

type Builder interface {
	Build(ctx context.Context, in BuilderInput) (Device, error)
}
