package trx

import (
	"fmt"
	"time"
)

// trxTimestampLayout renders timestamps with the seven fractional
// digits (100ns ticks) the TRX schema uses.
const trxTimestampLayout = "2006-01-02T15:04:05.0000000Z07:00"

// FormatTimestamp renders a timestamp for a TRX attribute.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(trxTimestampLayout)
}

// FormatDuration renders an elapsed duration as HH:MM:SS.fffffff with
// exactly seven fractional digits (100ns ticks). Hours grow without
// bound; a 25-hour run renders as "25:00:00.0000000".
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	ticks := d.Nanoseconds() / 100
	seconds := ticks / 10_000_000
	return fmt.Sprintf("%02d:%02d:%02d.%07d",
		seconds/3600,
		(seconds/60)%60,
		seconds%60,
		ticks%10_000_000)
}
