package domain

import "time"

func fixedNow() time.Time {
	return time.Date(2025, 9, 30, 16, 45, 0, 0, time.UTC)
}
