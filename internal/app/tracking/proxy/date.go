package proxy

import (
	"time"

	"github.com/light-bringer/changeproxy/internal/app/tracking/tracker"
)

// Date proxies a timestamp field. Dates carry no tracker: every setter
// dirties the owner.
type Date struct {
	owned
	t time.Time
}

func NewDate(t time.Time) *Date {
	return &Date{owned: unowned(), t: t}
}

func (d *Date) ChangeTracker() tracker.ChangeTracker { return nil }

func (d *Date) Time() time.Time { return d.t }

func (d *Date) UnixMilli() int64 { return d.t.UnixMilli() }

func (d *Date) Equal(t time.Time) bool { return d.t.Equal(t) }

func (d *Date) Set(t time.Time) {
	Dirty(d, false)
	d.t = t
}

func (d *Date) SetUnixMilli(ms int64) {
	Dirty(d, false)
	d.t = time.UnixMilli(ms).In(d.t.Location())
}

func (d *Date) Add(dur time.Duration) {
	Dirty(d, false)
	d.t = d.t.Add(dur)
}

func (d *Date) Truncate(dur time.Duration) {
	Dirty(d, false)
	d.t = d.t.Truncate(dur)
}

// Snapshot returns the plain time.Time.
func (d *Date) Snapshot() any { return d.t }

// NewInstance returns an unowned date proxy holding t.
func (d *Date) NewInstance(t time.Time) *Date { return NewDate(t) }

// Calendar proxies a zoned date and time. Like Date, every setter dirties
// the owner.
type Calendar struct {
	owned
	t time.Time
}

func NewCalendar(t time.Time) *Calendar {
	return &Calendar{owned: unowned(), t: t}
}

func (c *Calendar) ChangeTracker() tracker.ChangeTracker { return nil }

func (c *Calendar) Time() time.Time { return c.t }

func (c *Calendar) Location() *time.Location { return c.t.Location() }

func (c *Calendar) Set(t time.Time) {
	Dirty(c, false)
	c.t = t.In(c.t.Location())
}

// SetLocation moves the calendar to loc, keeping the instant.
func (c *Calendar) SetLocation(loc *time.Location) {
	Dirty(c, false)
	c.t = c.t.In(loc)
}

// SetDate changes the calendar date and keeps the wall clock.
func (c *Calendar) SetDate(year int, month time.Month, day int) {
	Dirty(c, false)
	h, m, s := c.t.Clock()
	c.t = time.Date(year, month, day, h, m, s, c.t.Nanosecond(), c.t.Location())
}

// SetClock changes the wall clock and keeps the date.
func (c *Calendar) SetClock(hour, min, sec, nsec int) {
	Dirty(c, false)
	y, mo, d := c.t.Date()
	c.t = time.Date(y, mo, d, hour, min, sec, nsec, c.t.Location())
}

func (c *Calendar) AddDate(years, months, days int) {
	Dirty(c, false)
	c.t = c.t.AddDate(years, months, days)
}

func (c *Calendar) Add(dur time.Duration) {
	Dirty(c, false)
	c.t = c.t.Add(dur)
}

func (c *Calendar) Snapshot() any { return c.t }

func (c *Calendar) NewInstance(t time.Time) *Calendar { return NewCalendar(t) }
