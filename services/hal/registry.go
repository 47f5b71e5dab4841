package hal

import (
	"context"
	"fmt"
	"sync"
	"time"

	"serialcore-go/periph"
)

// BuildInput is handed to a device builder to construct a capability
// instance from its config entry.
type BuildInput struct {
	Ctx      context.Context
	Ports    PortFactory
	ClockHz  uint32
	DeviceID string
	Type     string
	Port     string
	Params   any
}

// BuildOutput is returned by a builder: the dispatch handle for control
// operations, plus the optional event plumbing for producer devices.
type BuildOutput struct {
	Handle *periph.Handle
	Kind   string

	// Serial producers only.
	Port   SerialPort
	Reader ReaderConfig

	// Periodic producers only (timers).
	PollEvery time.Duration
}

// Builder constructs a capability instance from config.
type Builder interface {
	Build(in BuildInput) (BuildOutput, error)
}

// BuilderFunc adapts a function to the Builder interface.
type BuilderFunc func(in BuildInput) (BuildOutput, error)

func (f BuilderFunc) Build(in BuildInput) (BuildOutput, error) { return f(in) }

var (
	muBuilders sync.RWMutex
	builders   = map[string]Builder{}
)

// RegisterBuilder installs a builder for a device type string. It
// panics on duplicate registration to catch mistakes at start-up.
func RegisterBuilder(deviceType string, b Builder) {
	muBuilders.Lock()
	defer muBuilders.Unlock()
	if deviceType == "" {
		panic("hal: empty device type for builder")
	}
	if _, exists := builders[deviceType]; exists {
		panic(fmt.Sprintf("hal: builder already registered for type %q", deviceType))
	}
	builders[deviceType] = b
}

func findBuilder(deviceType string) (Builder, bool) {
	muBuilders.RLock()
	defer muBuilders.RUnlock()
	b, ok := builders[deviceType]
	return b, ok
}
