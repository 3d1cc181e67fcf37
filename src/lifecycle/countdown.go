package lifecycle

import (
	"fmt"
	"time"
)

// Countdown is the remaining time until departure broken into display units.
type Countdown struct {
	Days     int  `json:"days"`
	Hours    int  `json:"hours"`
	Minutes  int  `json:"minutes"`
	Seconds  int  `json:"seconds"`
	Departed bool `json:"departed"`
}

// ComputeCountdown never returns negative components: once now reaches
// departure the result is the Departed marker with every unit at zero.
func ComputeCountdown(departure, now time.Time) Countdown {
	if !now.Before(departure) {
		return Countdown{Departed: true}
	}
	remaining := int64(departure.Sub(now) / time.Second)
	return Countdown{
		Days:    int(remaining / 86400),
		Hours:   int(remaining % 86400 / 3600),
		Minutes: int(remaining % 3600 / 60),
		Seconds: int(remaining % 60),
	}
}

func (c Countdown) String() string {
	if c.Departed {
		return "departed"
	}
	return fmt.Sprintf("%dd %02dh %02dm %02ds", c.Days, c.Hours, c.Minutes, c.Seconds)
}
