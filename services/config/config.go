// Package config publishes the device's embedded configuration to the
// bus. Each top-level JSON section is decoded into its typed form and
// published retained under config/<section>, so services started in any
// order still receive their configuration.
package config

import (
	"context"
	"encoding/json"
	"errors"

	"panelfw-go/bus"
	"panelfw-go/types"
)

const (
	serviceName  = "config"
	configPrefix = "config"
	CtxDeviceKey = "device" // context key used for device ID
)

// EmbeddedConfigLookup allows overriding how configs are resolved.
var EmbeddedConfigLookup = func(device string) ([]byte, bool) {
	b, ok := embeddedConfigs[device]
	return b, ok
}

type ConfigService struct {
	Name string
}

func NewConfigService() *ConfigService {
	return &ConfigService{Name: serviceName}
}

// Wire forms: device params stay raw until the device type is known.

type wireDevice struct {
	ID     string          `json:"id"`
	Type   string          `json:"type"`
	Params json.RawMessage `json:"params"`
}

type wireHAL struct {
	Devices []wireDevice `json:"devices"`
}

// publishConfig decodes the embedded config for the device named in ctx
// and publishes each section as a retained message.
func (s *ConfigService) publishConfig(ctx context.Context, conn *bus.Connection) error {
	device, _ := ctx.Value(CtxDeviceKey).(string)
	if device == "" {
		return errors.New("missing device ID in context")
	}

	raw, ok := EmbeddedConfigLookup(device)
	if !ok || len(raw) == 0 {
		return errors.New("no embedded config for device: " + device)
	}

	var sections map[string]json.RawMessage
	if err := json.Unmarshal(raw, &sections); err != nil {
		return err
	}

	for key, sec := range sections {
		payload, err := decodeSection(key, sec)
		if err != nil {
			println("[config] bad section:", key, "err:", err.Error())
			continue
		}
		conn.Publish(conn.NewMessage(bus.T(configPrefix, key), payload, true))
	}
	return nil
}

// decodeSection maps known sections onto their typed payloads. Unknown
// sections pass through as generic JSON values.
func decodeSection(key string, raw json.RawMessage) (any, error) {
	switch key {
	case "hal":
		var w wireHAL
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		return typedHALConfig(w)
	case "heartbeat":
		var hb types.HeartbeatConfig
		if err := json.Unmarshal(raw, &hb); err != nil {
			return nil, err
		}
		return hb, nil
	default:
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return v, nil
	}
}

func typedHALConfig(w wireHAL) (types.HALConfig, error) {
	cfg := types.HALConfig{Devices: make([]types.HALDevice, 0, len(w.Devices))}
	for _, d := range w.Devices {
		params, err := decodeDeviceParams(d.Type, d.Params)
		if err != nil {
			return cfg, err
		}
		cfg.Devices = append(cfg.Devices, types.HALDevice{ID: d.ID, Type: d.Type, Params: params})
	}
	return cfg, nil
}

func decodeDeviceParams(devType string, raw json.RawMessage) (any, error) {
	unmarshal := func(dst any) error {
		if len(raw) == 0 {
			return nil
		}
		return json.Unmarshal(raw, dst)
	}
	switch devType {
	case "frontpanel":
		// Seed the sentinel so an omitted indicator_pin stays disabled
		// instead of decoding to GPIO0.
		p := types.PanelParams{IndicatorPin: types.NoIndicatorPin}
		if err := unmarshal(&p); err != nil {
			return nil, err
		}
		return p, nil
	case "pwm_out":
		var p types.PWMParams
		if err := unmarshal(&p); err != nil {
			return nil, err
		}
		return p, nil
	case "gpio_led":
		var p types.LEDParams
		if err := unmarshal(&p); err != nil {
			return nil, err
		}
		return p, nil
	case "gpio_button":
		var p types.ButtonParams
		if err := unmarshal(&p); err != nil {
			return nil, err
		}
		return p, nil
	case "display_out":
		var p types.DisplayParams
		if err := unmarshal(&p); err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, errors.New("unknown device type: " + devType)
	}
}

// Start launches the config publisher in a goroutine.
func (s *ConfigService) Start(ctx context.Context, conn *bus.Connection) {
	go func() {
		if err := s.publishConfig(ctx, conn); err != nil {
			println("[config] publish failed:", err.Error())
		}
	}()
}
