package geo

// ClusterByLocation groups items by proximity to a seed.
//
// Each item with a coordinate joins the first existing group whose seed (first
// member) lies closer than thresholdMeters; otherwise it starts a new group.
// Items for which coord returns nil are not placed in any group. Input order is
// preserved inside every group.
func ClusterByLocation[T any](items []T, coord func(T) *Coordinate, thresholdMeters float64) [][]T {
	var groups [][]T
	var seeds []Coordinate

	for _, item := range items {
		c := coord(item)
		if c == nil {
			continue
		}

		placed := false
		for i, seed := range seeds {
			if Distance(seed, *c) < thresholdMeters {
				groups[i] = append(groups[i], item)
				placed = true
				break
			}
		}

		if !placed {
			groups = append(groups, []T{item})
			seeds = append(seeds, *c)
		}
	}

	return groups
}
