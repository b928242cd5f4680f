package usecase

import "github.com/xavierca1/lead-dashboard/internal/entity"

type Stats struct {
	Total    int                   `json:"total"`
	Visible  int                   `json:"visible"`
	ByStatus map[entity.Status]int `json:"by_status"`
}

// ComputeStats counts the whole snapshot by status; Visible is the size of
// the filtered set.
func ComputeStats(all []entity.Lead, visible int) Stats {
	s := Stats{
		Total:    len(all),
		Visible:  visible,
		ByStatus: make(map[entity.Status]int),
	}
	for _, l := range all {
		s.ByStatus[l.Status.OrDefault()]++
	}
	return s
}
