package usecase

import (
	"time"

	"github.com/xavierca1/lead-dashboard/internal/entity"
)

type ListLeadsUseCase struct {
	Snapshots SnapshotReader
	Now       func() time.Time
}

func NewListLeadsUseCase(snapshots SnapshotReader) *ListLeadsUseCase {
	return &ListLeadsUseCase{Snapshots: snapshots, Now: time.Now}
}

type ListLeadsOutput struct {
	Page   Page      `json:"page"`
	Stats  Stats     `json:"stats"`
	State  ViewState `json:"state"`
	ReadAt time.Time `json:"read_at"`
}

// Execute runs filter, sort and pagination over the latest snapshot. The
// requested page is clamped to what the filtered set can fill, and the
// returned state reflects the page actually served.
func (uc *ListLeadsUseCase) Execute(c entity.Collection, state ViewState) (*ListLeadsOutput, error) {
	all, readAt, ok := uc.Snapshots.Leads(c.Name)
	if !ok {
		return nil, ErrSnapshotNotReady
	}

	visible := uc.pipeline(all, c, state)

	size := EffectivePageSize(c.PageSize)
	total := TotalPages(len(visible), size)
	state = state.WithPage(ClampPage(state.Page, total))

	page, err := Paginate(visible, size, state.Page)
	if err != nil {
		return nil, err
	}

	return &ListLeadsOutput{
		Page:   page,
		Stats:  ComputeStats(all, len(visible)),
		State:  state,
		ReadAt: readAt,
	}, nil
}

// Visible is the filtered and sorted set without pagination, as exported.
func (uc *ListLeadsUseCase) Visible(c entity.Collection, state ViewState) ([]entity.Lead, error) {
	all, _, ok := uc.Snapshots.Leads(c.Name)
	if !ok {
		return nil, ErrSnapshotNotReady
	}
	return uc.pipeline(all, c, state), nil
}

func (uc *ListLeadsUseCase) Stats(c entity.Collection) (Stats, error) {
	all, _, ok := uc.Snapshots.Leads(c.Name)
	if !ok {
		return Stats{}, ErrSnapshotNotReady
	}
	return ComputeStats(all, len(all)), nil
}

func (uc *ListLeadsUseCase) Find(c entity.Collection, id string) (*entity.Lead, error) {
	all, _, ok := uc.Snapshots.Leads(c.Name)
	if !ok {
		return nil, ErrSnapshotNotReady
	}
	for i := range all {
		if all[i].ID == id {
			lead := all[i]
			return &lead, nil
		}
	}
	return nil, ErrLeadNotFound
}

func (uc *ListLeadsUseCase) pipeline(all []entity.Lead, c entity.Collection, state ViewState) []entity.Lead {
	now := time.Now()
	if uc.Now != nil {
		now = uc.Now()
	}
	filtered := FilterLeads(all, state.Criteria(c, now))
	return SortLeads(filtered, state.SortKey, state.SortDirection)
}

func (uc *ListLeadsUseCase) Ready(c entity.Collection) bool {
	_, _, ok := uc.Snapshots.Leads(c.Name)
	return ok
}
