package config

// Embedded configuration, keyed by device ID. Populate at build time
// (code generation) or by hand during development.

const cfgPico = `{
  "hal": {
    "devices": [
      {
        "id": "con0",
        "type": "uart",
        "port": "uart0",
        "params": {"baud": 115200, "mode": "lines", "idle_flush_ms": 50}
      },
      {
        "id": "gnss0",
        "type": "uart",
        "port": "uart1",
        "params": {"baud": 9600, "mode": "lines", "checksum": "nmea"}
      },
      {
        "id": "tick0",
        "type": "soft_timer",
        "params": {"period_ms": 1000}
      }
    ]
  },
  "heartbeat": {
    "interval": 2
  }
}`

var embeddedConfigs = map[string][]byte{
	"pico": []byte(cfgPico),
}
