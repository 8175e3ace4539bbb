package rating_test

import (
	"testing"

	"github.com/garnizeh/jobboard/internal/rating"
)

func TestAggregate(t *testing.T) {
	cases := []struct {
		name    string
		ratings []int
		avg     float64
		count   int
		dist    map[int]int
	}{
		{name: "Empty", ratings: nil, avg: 0, count: 0, dist: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}},
		{name: "FourAndTwo", ratings: []int{4, 2}, avg: 3.0, count: 2, dist: map[int]int{1: 0, 2: 1, 3: 0, 4: 1, 5: 0}},
		{name: "AllFives", ratings: []int{5, 5, 5}, avg: 5, count: 3, dist: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 3}},
		{name: "Thirds", ratings: []int{1, 2, 2}, avg: 5.0 / 3, count: 3, dist: map[int]int{1: 1, 2: 2, 3: 0, 4: 0, 5: 0}},
		{name: "NotRounded", ratings: []int{4, 4, 5}, avg: 13.0 / 3, count: 3, dist: map[int]int{1: 0, 2: 0, 3: 0, 4: 2, 5: 1}},
		{name: "OutOfRangeIgnored", ratings: []int{0, 6, -1, 3}, avg: 3, count: 1, dist: map[int]int{1: 0, 2: 0, 3: 1, 4: 0, 5: 0}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := rating.Aggregate(c.ratings)
			if got.AverageRating != c.avg {
				t.Fatalf("average: want %v got %v", c.avg, got.AverageRating)
			}
			if got.ReviewCount != c.count {
				t.Fatalf("count: want %d got %d", c.count, got.ReviewCount)
			}
			if len(got.Distribution) != 5 {
				t.Fatalf("distribution must have 5 buckets, got %v", got.Distribution)
			}
			for k, v := range c.dist {
				if got.Distribution[k] != v {
					t.Fatalf("distribution[%d]: want %d got %d", k, v, got.Distribution[k])
				}
			}
		})
	}
}

// Sum of the histogram always equals the count and the average is the mean.
func TestAggregate_Properties(t *testing.T) {
	ratings := []int{}
	for i := 0; i < 50; i++ {
		ratings = append(ratings, i%5+1)
		got := rating.Aggregate(ratings)

		total, sum := 0, 0
		for k, v := range got.Distribution {
			total += v
			sum += k * v
		}
		if total != got.ReviewCount || got.ReviewCount != len(ratings) {
			t.Fatalf("histogram total %d, count %d, n %d", total, got.ReviewCount, len(ratings))
		}
		if want := float64(sum) / float64(total); got.AverageRating != want {
			t.Fatalf("average: want %v got %v", want, got.AverageRating)
		}
	}
}

func TestBucketsRoundTrip(t *testing.T) {
	s := rating.Aggregate([]int{1, 3, 3, 5})
	b := rating.Buckets(s)
	if b != [5]int{1, 0, 2, 0, 1} {
		t.Fatalf("unexpected buckets %v", b)
	}
	back := rating.FromColumns(s.AverageRating, s.ReviewCount, b)
	if back.AverageRating != s.AverageRating || back.ReviewCount != 4 || back.Distribution[3] != 2 {
		t.Fatalf("unexpected summary %+v", back)
	}
}
