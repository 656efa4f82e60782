// Package localday resolves a client's claimed UTC offset into the calendar
// day they are playing and the instant that day ends for them.
package localday

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MaxOffsetMinutes bounds accepted offsets. Real zones sit within ±14h.
const MaxOffsetMinutes = 14 * 60

// Day is a calendar date in the client's shifted frame.
type Day struct {
	Year  int
	Month int
	Day   int
}

// Window is the resolution of one request: the local day and the UTC instant
// at which the client's local day rolls over.
type Window struct {
	Day    Day
	Offset int
	Expiry time.Time
}

// ParseOffset reads an offset in minutes the way browsers send it. Leading
// digits are honoured ("90abc" is 90); anything unreadable or out of range
// is treated as UTC.
func ParseOffset(raw string) int {
	s := strings.TrimSpace(raw)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0
	}
	offset, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	if offset > MaxOffsetMinutes || offset < -MaxOffsetMinutes {
		return 0
	}
	return offset
}

// Resolve shifts now by offset minutes and reports the local day along with
// the UTC instant of the next local midnight.
func Resolve(now time.Time, offset int) Window {
	shift := time.Duration(offset) * time.Minute
	local := now.UTC().Add(shift)
	y, m, d := local.Date()
	nextMidnight := time.Date(y, m, d+1, 0, 0, 0, 0, time.UTC)
	return Window{
		Day:    Day{Year: y, Month: int(m), Day: d},
		Offset: offset,
		Expiry: nextMidnight.Add(-shift),
	}
}

// Key is the history key persisted by the rotation pool ("2025-1-5").
func (d Day) Key() string {
	return fmt.Sprintf("%d-%d-%d", d.Year, d.Month, d.Day)
}

// Seed joins tag with the unpadded date digits ("weapons202515"). The
// unpadded form is kept because previously served days were derived from it.
func (d Day) Seed(tag string) string {
	return tag + strconv.Itoa(d.Year) + strconv.Itoa(d.Month) + strconv.Itoa(d.Day)
}

func (d Day) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}
