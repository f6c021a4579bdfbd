package realtime

import (
	"sync/atomic"

	"github.com/dmorenov/cajadesk/pkg/metrics"
)

// Visibility tracks whether the hosting surface is foregrounded. It holds
// state only; the poll scheduler consults it on every tick.
type Visibility struct {
	hidden atomic.Bool
}

// NewVisibility constructs a monitor that starts live.
func NewVisibility() *Visibility {
	v := &Visibility{}
	metrics.SchedulerLive.Set(1)
	return v
}

// SetLive records whether the surface is currently foregrounded/focused.
func (v *Visibility) SetLive(live bool) {
	v.hidden.Store(!live)
	if live {
		metrics.SchedulerLive.Set(1)
	} else {
		metrics.SchedulerLive.Set(0)
	}
}

// Live reports whether poll ticks should do work.
func (v *Visibility) Live() bool {
	return !v.hidden.Load()
}
