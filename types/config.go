package types

// ---- Public HAL configuration ----

type HALConfig struct {
	Devices []HALDevice `json:"devices"`
}

type HALDevice struct {
	ID     string `json:"id"`     // logical device id, e.g. "panel0"
	Type   string `json:"type"`   // e.g. "frontpanel"
	Params any    `json:"params"` // device-specific params
}

// ---- Front panel configuration ----

// PanelInput configures one debounced interrupt input.
type PanelInput struct {
	Pin        int    `json:"pin"`
	Pull       string `json:"pull"`   // "none","up","down"
	Invert     bool   `json:"invert"` // true if pressed == low
	DebounceMs uint16 `json:"debounce_ms"`
}

// NoIndicatorPin marks a panel without an indicator output. Config
// decoding maps an omitted indicator_pin to this sentinel.
const NoIndicatorPin = -1

// PanelParams wires the two inputs to their outputs. BrightnessLevels
// is the cyclic duty table in percent; {0,100} baseline, {50,100}
// dimmed, or any N-level cycle. IndicatorPin must be NoIndicatorPin
// when the panel has no indicator.
type PanelParams struct {
	Brightness       PanelInput `json:"brightness"`
	Mode             PanelInput `json:"mode"`
	BacklightPin     int        `json:"backlight_pin"`
	BacklightFreqHz  uint64     `json:"backlight_freq_hz"`
	IndicatorPin     int        `json:"indicator_pin"`
	BrightnessLevels []uint8    `json:"brightness_levels"`
	Domain           string     `json:"domain"`
	Name             string     `json:"name"`
}

// DefaultDebounceMs applies when a PanelInput leaves DebounceMs zero.
const DefaultDebounceMs = 200

// ---- Generic device configuration ----

type PWMParams struct {
	Pin    int    `json:"pin"`
	FreqHz uint64 `json:"freq_hz"`
	Top    uint16 `json:"top"`
	Domain string `json:"domain"`
	Name   string `json:"name"`
}

type LEDParams struct {
	Pin       int    `json:"pin"`
	ActiveLow bool   `json:"active_low"`
	Initial   bool   `json:"initial"`
	Domain    string `json:"domain"`
	Name      string `json:"name"`
}

type ButtonParams struct {
	Input  PanelInput `json:"input"`
	Domain string     `json:"domain"`
	Name   string     `json:"name"`
}

type DisplayParams struct {
	Domain string `json:"domain"`
	Name   string `json:"name"`
}

// ---- Service configuration ----

type HeartbeatConfig struct {
	IntervalS int `json:"interval_s"`
}
