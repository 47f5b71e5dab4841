package hal

import (
	"context"
	"sync/atomic"
	"time"

	"serialcore-go/x/checksum"
	"serialcore-go/x/mathx"
)

// SerialEvent is one chunk of received data leaving a reader worker.
type SerialEvent struct {
	DevID string
	Data  []byte
	TS    time.Time
}

// ReaderConfig tunes a serial reader worker.
type ReaderConfig struct {
	// Mode is "bytes" (forward chunks as they arrive) or "lines"
	// (accumulate until newline or idle flush).
	Mode string
	// IdleFlush bounds how long a partial line may sit before it is
	// emitted anyway. Lines mode only.
	IdleFlush time.Duration
	// MaxChunk caps one event's payload.
	MaxChunk int
	// Checksum selects per-line validation: "" (none) or "nmea"
	// ($...*HH sentences, XOR over the payload between $ and *).
	// Failing lines are dropped and counted. Lines mode only.
	Checksum string
}

// serialReader drains a port's receive ring into the service's event
// fan-in. One goroutine per port; it sleeps on the ring's readable edge
// so an idle port costs nothing. Events that would block are dropped
// and counted, mirroring the interrupt-side discipline: the reader must
// never stall the ring consumer.
type serialReader struct {
	devID string
	port  SerialPort
	cfg   ReaderConfig
	sink  chan<- SerialEvent

	line    []byte
	dropped atomic.Uint32
	badSums atomic.Uint32
}

func newSerialReader(devID string, port SerialPort, cfg ReaderConfig, sink chan<- SerialEvent) *serialReader {
	if cfg.Mode == "" {
		cfg.Mode = "bytes"
	}
	if cfg.IdleFlush <= 0 {
		cfg.IdleFlush = 50 * time.Millisecond
	}
	if cfg.MaxChunk <= 0 {
		cfg.MaxChunk = 64
	}
	cfg.MaxChunk = mathx.Clamp(cfg.MaxChunk, 16, 1024)
	return &serialReader{devID: devID, port: port, cfg: cfg, sink: sink}
}

// Dropped reports events discarded because the fan-in was full.
func (r *serialReader) Dropped() uint32 { return r.dropped.Load() }

// BadChecksums reports lines dropped by checksum validation.
func (r *serialReader) BadChecksums() uint32 { return r.badSums.Load() }

func (r *serialReader) Start(ctx context.Context) {
	go r.loop(ctx)
}

func (r *serialReader) loop(ctx context.Context) {
	flush := time.NewTimer(time.Hour)
	if !flush.Stop() {
		drainTimer(flush)
	}
	defer flush.Stop()

	for {
		r.drain()

		armed := false
		if r.cfg.Mode == "lines" && len(r.line) > 0 {
			flush.Reset(r.cfg.IdleFlush)
			armed = true
		}

		select {
		case <-ctx.Done():
			return
		case <-r.port.Readable():
		case <-flush.C:
			if len(r.line) > 0 {
				r.emit(r.line)
				r.line = nil
			}
			continue
		}
		if armed && !flush.Stop() {
			drainTimer(flush)
		}
	}
}

// drain moves everything currently buffered out of the port.
func (r *serialReader) drain() {
	buf := make([]byte, r.cfg.MaxChunk)
	for r.port.Buffered() > 0 {
		n, err := r.port.Read(buf)
		if err != nil || n == 0 {
			return
		}
		if r.cfg.Mode == "lines" {
			r.splitLines(buf[:n])
		} else {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			r.emit(chunk)
		}
	}
}

func (r *serialReader) splitLines(chunk []byte) {
	for _, b := range chunk {
		if b == '\n' {
			line := r.line
			r.line = nil
			if r.cfg.Checksum == "nmea" && !nmeaValid(line) {
				r.badSums.Add(1)
				continue
			}
			r.emit(line)
			continue
		}
		r.line = append(r.line, b)
	}
}

// nmeaValid checks a $...*HH sentence: XOR of the bytes between $ and *
// must equal the two trailing hex digits. A trailing carriage return is
// tolerated.
func nmeaValid(line []byte) bool {
	if n := len(line); n > 0 && line[n-1] == '\r' {
		line = line[:n-1]
	}
	if len(line) < 4 || line[0] != '$' {
		return false
	}
	star := len(line) - 3
	if line[star] != '*' {
		return false
	}
	hi, ok1 := hexNibble(line[star+1])
	lo, ok2 := hexNibble(line[star+2])
	if !ok1 || !ok2 {
		return false
	}
	return checksum.Xor8(line[1:star]) == hi<<4|lo
}

func hexNibble(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	default:
		return 0, false
	}
}

func (r *serialReader) emit(data []byte) {
	ev := SerialEvent{DevID: r.devID, Data: data, TS: time.Now()}
	select {
	case r.sink <- ev:
	default:
		r.dropped.Add(1)
	}
}

func drainTimer(t *time.Timer) {
	select {
	case <-t.C:
	default:
	}
}
