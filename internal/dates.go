package internal

import (
	"math"
	"time"
)

// Spreadsheet serial dates count days from 1899-12-30 in local wall-clock
// time, so local noon is always .5 wherever the sheet is read. Instants are
// absolute, so converting between the two needs the zone offset in force at
// that moment.
const (
	UnixEpochSerial = 25569 // serial of 1970-01-01 00:00 local
	MsPerDay        = 86_400_000
	MsPerMinute     = 60_000
	MinutesPerDay   = 1440
)

// InstantToSerial converts milliseconds since the Unix epoch to a serial
// date. offsetMinutes is UTC minus local time, so UTC+1 is -60.
func InstantToSerial(ms float64, offsetMinutes int) float64 {
	return (ms-float64(offsetMinutes)*MsPerMinute)/MsPerDay + UnixEpochSerial
}

// SerialToInstant converts a serial date to milliseconds since the Unix
// epoch. offsetAt returns the offset (UTC minus local, in minutes) in force
// at an instant.
//
// The offset depends on the date being resolved, so the serial is first
// read as if it were UTC and the offset at that provisional instant is then
// applied. Wall-clock times inside a DST gap or overlap get whichever
// instant this yields.
func SerialToInstant(serial float64, offsetAt func(ms float64) int) float64 {
	ms := (serial - UnixEpochSerial) * MsPerDay
	return ms + float64(offsetAt(ms))*MsPerMinute
}

// TimeToSerial converts t to a serial date in t's own location.
func TimeToSerial(t time.Time) float64 {
	ms := float64(t.UnixNano()) / float64(time.Millisecond)
	return InstantToSerial(ms, offsetMinutes(t))
}

// SerialToTime converts a serial date to the instant it denotes in loc.
// The result is in loc, so its calendar fields match the serial's wall
// clock. Instants are rounded to the millisecond.
func SerialToTime(serial float64, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	ms := SerialToInstant(serial, func(ms float64) int {
		return offsetMinutes(time.UnixMilli(int64(math.Round(ms))).In(loc))
	})
	return time.UnixMilli(int64(math.Round(ms))).In(loc)
}

// offsetMinutes is UTC minus local time for t's zone at t.
func offsetMinutes(t time.Time) int {
	_, east := t.Zone()
	return -east / 60
}
