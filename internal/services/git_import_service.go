package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/shajanthanx/life-v2-sub002/internal/domain"
	"github.com/shajanthanx/life-v2-sub002/internal/ports"
)

// GitImportService marks a habit completed on every day with a commit.
type GitImportService struct {
	history ports.CommitHistory
	records ports.RecordStore
	engine  *Engine
	logger  *zap.Logger
}

// NewGitImportService creates a new git import service.
func NewGitImportService(history ports.CommitHistory, records ports.RecordStore, engine *Engine, logger *zap.Logger) *GitImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GitImportService{history: history, records: records, engine: engine, logger: logger}
}

// ImportRequest selects which commits count.
type ImportRequest struct {
	RepoPath string
	Author   string
	Since    *domain.Day
}

// ImportResult summarizes an import.
type ImportResult struct {
	Commits int
	Days    []domain.Day
	Created int
}

// Import sets habit completed on each commit day not already completed.
// Days are evaluated in the engine's zone.
func (s *GitImportService) Import(ctx context.Context, habit *domain.Habit, req ImportRequest) (*ImportResult, error) {
	filter := ports.CommitFilter{Author: req.Author}
	if req.Since != nil {
		filter.Since = req.Since.Time(s.engine.Location())
	}

	if !s.history.IsRepository(req.RepoPath) {
		return nil, fmt.Errorf("%w: %s is not a git repository", domain.ErrNotFound, req.RepoPath)
	}

	commits, err := s.history.Commits(ctx, req.RepoPath, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to read commit history: %w", err)
	}

	days := CommitDays(commits, s.engine.Location())
	result := &ImportResult{Commits: len(commits), Days: days}

	for _, day := range days {
		if habit.CompletedOn(day) {
			continue
		}
		if _, err := s.records.UpsertRecord(ctx, habit.ID, day, true, nil); err != nil {
			return result, fmt.Errorf("%w: import %s: %w", domain.ErrPersistence, day, err)
		}
		result.Created++
	}

	if err := s.engine.Refresh(ctx, habit); err != nil {
		return result, err
	}

	s.logger.Info("git import finished",
		zap.String("habit", habit.Name),
		zap.String("repo", req.RepoPath),
		zap.Int("commits", result.Commits),
		zap.Int("days", len(result.Days)),
		zap.Int("created", result.Created),
	)
	return result, nil
}

// CommitDays maps commit instants to distinct calendar days in loc, ascending.
func CommitDays(commits []ports.Commit, loc *time.Location) []domain.Day {
	seen := make(map[domain.Day]struct{})
	for _, c := range commits {
		seen[domain.DayOf(c.When.In(loc))] = struct{}{}
	}
	days := make([]domain.Day, 0, len(seen))
	for d := range seen {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}
