package service

import (
	"context"
	"sort"
	"time"

	"posledger/internal/model"
	"posledger/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ActivityFilter narrows List. Zero values match everything; From and To
// are inclusive.
type ActivityFilter struct {
	Type string
	From *time.Time
	To   *time.Time
}

func (f ActivityFilter) matches(r model.ActivityRecord) bool {
	if f.Type != "" && r.Type != f.Type {
		return false
	}
	if f.From != nil && r.Timestamp.Before(*f.From) {
		return false
	}
	if f.To != nil && r.Timestamp.After(*f.To) {
		return false
	}
	return true
}

type ActivityService interface {
	Append(ctx context.Context, records ...model.ActivityRecord)
	List(ctx context.Context, filter ActivityFilter) []model.ActivityRecord
	Summary(ctx context.Context, filter ActivityFilter) []model.ActivitySummary
}

type activityService struct {
	repo repository.ActivityRepository
	now  func() time.Time
}

func NewActivityService(repo repository.ActivityRepository) ActivityService {
	return &activityService{repo: repo, now: time.Now}
}

// Append stamps missing ids and timestamps and appends the records.
func (s *activityService) Append(ctx context.Context, records ...model.ActivityRecord) {
	now := s.now()
	for i := range records {
		if records[i].ID == "" {
			records[i].ID = uuid.NewString()
		}
		if records[i].Timestamp.IsZero() {
			records[i].Timestamp = now
		}
	}
	s.repo.Append(ctx, records...)
}

func (s *activityService) List(ctx context.Context, filter ActivityFilter) []model.ActivityRecord {
	out := make([]model.ActivityRecord, 0)
	for _, r := range s.repo.List(ctx) {
		if filter.matches(r) {
			out = append(out, r)
		}
	}
	return out
}

// Summary aggregates the matching records per type, ordered by type.
func (s *activityService) Summary(ctx context.Context, filter ActivityFilter) []model.ActivitySummary {
	byType := make(map[string]*model.ActivitySummary)
	for _, r := range s.List(ctx, filter) {
		sum, ok := byType[r.Type]
		if !ok {
			sum = &model.ActivitySummary{Type: r.Type, TotalValue: decimal.Zero}
			byType[r.Type] = sum
		}
		sum.Count++
		sum.TotalQuantity += r.Quantity
		sum.TotalValue = sum.TotalValue.Add(r.Total)
	}

	out := make([]model.ActivitySummary, 0, len(byType))
	for _, sum := range byType {
		out = append(out, *sum)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}
