// device_datetime.go - the datetime device, Varvara's 0xc0 page. Ports
// 0xc0-0xca are live reads recomputed from the host clock on each DEI;
// there is no better ecosystem library than the stdlib time package
// for reading it, so it's used directly (see DESIGN.md).

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionEngine
License: GPLv3 or later
*/

package main

import "time"

// Datetime device port offsets (0xc0-0xcf). All are read-only and
// live: every DEI recomputes from the host clock.
const (
	DatetimeYear  = 0xc0
	DatetimeMonth = 0xc2
	DatetimeDay   = 0xc3
	DatetimeHour  = 0xc4
	DatetimeMin   = 0xc5
	DatetimeSec   = 0xc6
	DatetimeDotw  = 0xc7 // day of the week, 0=Sunday
	DatetimeDoty  = 0xc8 // day of the year, 16-bit
	DatetimeIsDST = 0xca
)

// DatetimeDevice implements the 0xc0-0xcf device slot.
type DatetimeDevice struct {
	now func() time.Time // overridable for tests
}

func NewDatetimeDevice(m *Machine) *DatetimeDevice {
	dd := &DatetimeDevice{now: time.Now}
	m.AttachDevice(0xc, dd)
	for p := byte(0xc0); p <= 0xca; p++ {
		m.MarkReadable(p)
	}
	return dd
}

func (dd *DatetimeDevice) DEI(m *Machine, port byte) byte {
	t := dd.now()
	year, month, day := t.Date()
	switch port {
	case DatetimeYear:
		return byte(year >> 8)
	case DatetimeYear + 1:
		return byte(year)
	case DatetimeMonth:
		return byte(month - 1)
	case DatetimeDay:
		return byte(day)
	case DatetimeHour:
		return byte(t.Hour())
	case DatetimeMin:
		return byte(t.Minute())
	case DatetimeSec:
		return byte(t.Second())
	case DatetimeDotw:
		return byte(t.Weekday())
	case DatetimeDoty:
		return byte(t.YearDay() >> 8)
	case DatetimeDoty + 1:
		return byte(t.YearDay())
	case DatetimeIsDST:
		_, offset := t.Zone()
		if offset != 0 {
			return 1
		}
		return 0
	}
	return m.dev[port]
}

func (dd *DatetimeDevice) DEO(m *Machine, port byte, v byte) {}
