package usecase

import (
	"time"

	"github.com/xavierca1/lead-dashboard/internal/entity"
)

func at(s string) *time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return &t
}

func ids(leads []entity.Lead) []string {
	out := make([]string, len(leads))
	for i, l := range leads {
		out[i] = l.ID
	}
	return out
}

func collection(name string) entity.Collection {
	for _, c := range entity.DefaultCollections() {
		if c.Name == name {
			return c
		}
	}
	panic("unknown collection " + name)
}
