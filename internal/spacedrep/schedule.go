package spacedrep

// DefaultEasiness is the starting easiness factor for a fresh record.
const DefaultEasiness = 2.5

// MinEasiness is the floor for the easiness factor. Chronically-missed
// items stop shrinking here instead of collapsing toward zero.
const MinEasiness = 1.3

// EasyBonus scales interval growth for items graded "too easy".
const EasyBonus = 1.3

// InitialIntervals are the review intervals in days for the first
// repetitions, before multiplicative growth takes over.
var InitialIntervals = []int{1, 3, 7}

// MaxIntervalDays caps interval growth at one year.
const MaxIntervalDays = 365
