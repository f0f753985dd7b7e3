package router

import "golang.org/x/time/rate"

// limit converts a configured requests-per-second value; zero or less
// disables limiting
func limit(rps float64) rate.Limit {
	if rps <= 0 {
		return rate.Inf
	}
	return rate.Limit(rps)
}
