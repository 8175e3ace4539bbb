// Package rating derives the denormalised rating aggregate stored on jobs and
// employers from the set of active review ratings.
package rating

import "github.com/garnizeh/jobboard/pkg/models"

const (
	MinRating = 1
	MaxRating = 5
)

// Valid reports whether r is an allowed star rating.
func Valid(r int) bool { return r >= MinRating && r <= MaxRating }

// Empty returns the aggregate of an entity with no active reviews.
func Empty() models.RatingSummary {
	return models.RatingSummary{Distribution: emptyDistribution()}
}

// Aggregate computes average, count and the 1..5 histogram from a full scan
// of ratings. The average is the exact mean; rounding is left to clients.
// Values outside 1..5 are ignored.
func Aggregate(ratings []int) models.RatingSummary {
	s := Empty()
	sum := 0
	for _, r := range ratings {
		if !Valid(r) {
			continue
		}
		s.Distribution[r]++
		s.ReviewCount++
		sum += r
	}
	if s.ReviewCount > 0 {
		s.AverageRating = float64(sum) / float64(s.ReviewCount)
	}
	return s
}

// FromColumns rebuilds a summary from stored columns (average, count,
// rating_1..rating_5).
func FromColumns(avg float64, count int, buckets [5]int) models.RatingSummary {
	s := Empty()
	s.AverageRating = avg
	s.ReviewCount = count
	for i, n := range buckets {
		s.Distribution[i+1] = n
	}
	return s
}

// Buckets flattens the distribution into rating_1..rating_5 order.
func Buckets(s models.RatingSummary) [5]int {
	var b [5]int
	for r := MinRating; r <= MaxRating; r++ {
		b[r-1] = s.Distribution[r]
	}
	return b
}

func emptyDistribution() map[int]int {
	d := make(map[int]int, MaxRating)
	for r := MinRating; r <= MaxRating; r++ {
		d[r] = 0
	}
	return d
}
