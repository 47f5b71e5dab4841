// Package config publishes the device's embedded configuration as
// retained per-key messages on config/<key>. Services subscribe to
// their own key and receive the retained value whenever they start,
// regardless of ordering against this publisher.
package config

import (
	"context"
	"errors"

	"serialcore-go/bus"

	"github.com/andreyvit/tinyjson"
)

// String constants (live in flash, not RAM).
const (
	serviceName  = "config"
	configPrefix = "config"
	CtxDeviceKey = "device" // context key carrying the device ID
)

// EmbeddedConfigLookup resolves a device ID to its raw JSON config.
// Overridable for tests and for alternative provisioning schemes.
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

// publishConfig parses the embedded config for the device named in ctx
// and publishes each top-level key retained.
func (s *ConfigService) publishConfig(ctx context.Context, conn *bus.Connection) error {
	device, _ := ctx.Value(CtxDeviceKey).(string)
	if device == "" {
		return errors.New("missing device ID in context")
	}

	raw, ok := EmbeddedConfigLookup(device)
	if !ok || len(raw) == 0 {
		return errors.New("no embedded config for device: " + device)
	}

	r := tinyjson.Raw(raw)
	val := r.Value()
	r.EnsureEOF()

	m, ok := val.(map[string]any)
	if !ok {
		return errors.New("embedded config is not a JSON object")
	}

	for k, v := range m {
		conn.Publish(&bus.Message{
			Topic:    bus.T(configPrefix, k),
			Payload:  v,
			Retained: true,
		})
	}
	return nil
}

// Start launches the config publisher in a goroutine.
func (s *ConfigService) Start(ctx context.Context, conn *bus.Connection) {
	go func() {
		if err := s.publishConfig(ctx, conn); err != nil {
			println("Error: config:", err.Error())
		}
	}()
}
