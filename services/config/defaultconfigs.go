package config

// -----------------------------------------------------------------------------
// Embedded configuration
//
// Populate embeddedConfigs at build time (e.g. via code generation) or
// manually during development.
// Key: device ID (same value placed in ctx under CtxDeviceKey)
// Val: raw JSON bytes for that device
// -----------------------------------------------------------------------------

const cfgPicoPanel = `{
  "hal": {
    "devices": [
      {
        "id": "panel0",
        "type": "frontpanel",
        "params": {
          "brightness": {"pin": 14, "pull": "up", "invert": true, "debounce_ms": 200},
          "mode": {"pin": 15, "pull": "up", "invert": true, "debounce_ms": 200},
          "backlight_pin": 16,
          "backlight_freq_hz": 25000,
          "indicator_pin": 17,
          "brightness_levels": [0, 100],
          "domain": "io",
          "name": "front"
        }
      },
      {
        "id": "status0",
        "type": "gpio_led",
        "params": {"pin": 25, "name": "status"}
      }
    ]
  },
  "heartbeat": {
    "interval_s": 2
  }
}`

var embeddedConfigs = map[string][]byte{
	"pico-panel": []byte(cfgPicoPanel),
}
