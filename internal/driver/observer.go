package driver

import "time"

// UnitStatus reports whether a unit expansion started or finished.
type UnitStatus int

const (
	// UnitStart indicates that a unit's expansion has begun.
	UnitStart UnitStatus = iota
	UnitEnd
)

// UnitEvent describes a unit expansion boundary. Index/Total нумеруют
// единицы прогона; Elapsed и FromCache заполнены только на UnitEnd.
type UnitEvent struct {
	Path      string
	Index     int
	Total     int
	Status    UnitStatus
	Elapsed   time.Duration
	FromCache bool
}

// UnitObserver receives unit events emitted during ExpandUnits.
// Может вызываться из нескольких горутин одновременно.
type UnitObserver func(UnitEvent)
