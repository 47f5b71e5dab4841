package timex

import "time"

// NowMs returns Unix milliseconds as int64.
func NowMs() int64 { return time.Now().UnixMilli() }

// PeriodFromHz returns the nanosecond period for a requested frequency.
// freqHz==0 is coerced to 1 to avoid division by zero.
func PeriodFromHz(freqHz uint32) time.Duration {
	if freqHz == 0 {
		freqHz = 1
	}
	return time.Duration(1_000_000_000 / uint64(freqHz))
}

// CharTime returns the on-the-wire duration of one character at the
// given baud rate, assuming 10 bits per character (8N1).
func CharTime(baud uint32) time.Duration {
	if baud == 0 {
		return 0
	}
	perBit := time.Second / time.Duration(baud)
	return 10 * perBit
}
