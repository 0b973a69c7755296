/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package wordchain

import "time"

// Clock schedules the coordinator's one-shot ticks. Tests swap in a
// clock they can fire by hand.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type Timer interface {
	Stop() bool
}

type systemClock struct{}

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
