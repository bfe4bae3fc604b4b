package types

// ---- Common HAL state (retained) ----

type HALState struct {
	Level  string `json:"level"`  // "idle", "ready", "stopped"
	Status string `json:"status"` // freeform short code
	TSms   int64  `json:"ts_ms"`
}

// Link is the link/state reported for a capability.
type Link string

const (
	LinkUp       Link = "up"
	LinkDown     Link = "down"
	LinkDegraded Link = "degraded"
)

type CapabilityStatus struct {
	Link  Link   `json:"link"`
	TSms  int64  `json:"ts_ms"`
	Error string `json:"error,omitempty"` // machine-readable short code
}

// ---- Capability kinds & info ----

type Kind string

const (
	KindLED     Kind = "led"
	KindPWM     Kind = "pwm"
	KindButton  Kind = "button"
	KindDisplay Kind = "display"
	KindPanel   Kind = "panel"
)

// Info envelope each device/cap exposes (retained).
type Info struct {
	SchemaVersion int    `json:"schema_version"`
	Driver        string `json:"driver"`
	Detail        any    `json:"detail,omitempty"`
}

// ---- Button capability ----

type ButtonInfo struct {
	Pin int `json:"pin"`
}

type ButtonValue struct {
	Pressed bool `json:"pressed"`
	// Drops counts interrupt samples discarded because the device
	// queue was full; a growing value means the worker is starved.
	Drops uint32 `json:"drops,omitempty"`
}

// ---- LED / digital output capability ----

type LEDInfo struct {
	Pin int `json:"pin"`
}

type LEDValue struct {
	Level uint8 `json:"level"` // 0 or 1
}

type LEDSet struct {
	Level bool `json:"level"`
}

// ---- PWM capability ----

type PWMInfo struct {
	Pin       int    `json:"pin"`
	FreqHz    uint64 `json:"freq_hz,omitempty"`
	Top       uint16 `json:"top,omitempty"`
	ActiveLow bool   `json:"active_low,omitempty"`
	Initial   uint16 `json:"initial,omitempty"`
}

// PWMValue is published under hal/cap/.../value (retained).
type PWMValue struct {
	Level uint16 `json:"level"` // 0..Top
}

type PWMSet struct {
	Level uint16 `json:"level"` // 0..Top
}

type PWMRamp struct {
	To         uint16 `json:"to"`          // 0..Top
	DurationMs uint32 `json:"duration_ms"` // total duration
	Steps      uint16 `json:"steps"`       // number of steps (>0)
}

// ---- Display capability ----

// DisplayMode selects the panel-wide rendering polarity.
type DisplayMode string

const (
	DisplayNormal  DisplayMode = "normal"
	DisplayInverse DisplayMode = "inverse"
)

type DisplayInfo struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type DisplayValue struct {
	Mode DisplayMode `json:"mode"`
}

type DisplaySetMode struct {
	Mode DisplayMode `json:"mode"`
}

type DisplayDrawText struct {
	Line int    `json:"line"`
	Text string `json:"text"`
}

// ---- Front panel capability ----

// PanelValue is the retained snapshot of the panel's logical state.
type PanelValue struct {
	BrightnessPct uint8       `json:"brightness_pct"`
	Mode          DisplayMode `json:"mode"`
	IndicatorOn   bool        `json:"indicator_on"`
	Admitted      uint32      `json:"admitted"`
	Ignored       uint32      `json:"ignored"`
}

// PanelToggle selects which panel function a "toggle" verb addresses.
type PanelToggle struct {
	Function string `json:"function"` // "backlight" | "mode"
}

// Heartbeat is published retained under sys/heartbeat.
type Heartbeat struct {
	UptimeS int64 `json:"uptime_s"`
	TSms    int64 `json:"ts_ms"`
}

// Generic replies
type OKReply struct {
	OK bool `json:"ok"`
}
type ErrorReply struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}
