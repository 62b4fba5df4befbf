package catalog

import (
	"strconv"

	"vehicle-match-engine/internal/models"
	"vehicle-match-engine/internal/utils"
)

// Merge concatenates collections and removes duplicate configurations.
// The richer of two duplicates replaces the earlier one in its original position;
// on equal richness the earlier record stays.
func Merge(collections ...[]models.Vehicle) []models.Vehicle {
	index := make(map[string]int)
	var merged []models.Vehicle

	for _, vehicles := range collections {
		for _, v := range vehicles {
			key := v.DedupKey()
			if pos, ok := index[key]; ok {
				if v.Richness() > merged[pos].Richness() {
					merged[pos] = v
				}
				continue
			}
			index[key] = len(merged)
			merged = append(merged, v)
		}
	}

	if merged == nil {
		merged = []models.Vehicle{}
	}
	return merged
}

// AssignIDs gives every vehicle a positive id derived from its name, trim and year.
// Collisions probe upward so ids are unique across the slice.
func AssignIDs(vehicles []models.Vehicle) {
	used := make(map[int]struct{}, len(vehicles))
	for i := range vehicles {
		v := &vehicles[i]
		id := int(utils.Hash31(v.Name + "-" + v.Trim + "-" + strconv.Itoa(v.Year)))
		for {
			if _, taken := used[id]; !taken && id > 0 {
				break
			}
			id++
		}
		used[id] = struct{}{}
		v.ID = id
	}
}
