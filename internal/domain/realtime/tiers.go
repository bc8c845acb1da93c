package realtime

import "time"

// Priority labels a notification tier.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// Tier is one step of the new-listing broadcast: users within Radius meters are notified
// after Delay.
type Tier struct {
	Radius   float64
	Priority Priority
	Delay    time.Duration
}

// Tiers returns the notification tiers in ascending radius and delay.
func Tiers() []Tier {
	return []Tier{
		{Radius: 1000, Priority: PriorityCritical, Delay: 0},
		{Radius: 3000, Priority: PriorityHigh, Delay: 2 * time.Second},
		{Radius: 10000, Priority: PriorityMedium, Delay: 5 * time.Second},
		{Radius: 25000, Priority: PriorityLow, Delay: 10 * time.Second},
	}
}
