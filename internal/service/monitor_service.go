package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/model"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/repository"
)

// MonitorService orchestrates live exam monitoring.
type MonitorService struct {
	monitorRepo *repository.MonitorRepository
	blockRepo   *repository.BlockRepository
	now         func() time.Time
}

// NewMonitorService creates a new MonitorService.
func NewMonitorService(monitorRepo *repository.MonitorRepository, blockRepo *repository.BlockRepository) *MonitorService {
	return &MonitorService{monitorRepo: monitorRepo, blockRepo: blockRepo, now: time.Now}
}

// CandidateProgress is one row of the live monitor.
type CandidateProgress struct {
	Phone          string           `json:"phone"`
	StartedAt      time.Time        `json:"started_at"`
	ElapsedSeconds int64            `json:"elapsed_seconds"`
	Violations     map[string]int64 `json:"violations"`
	Blocked        bool             `json:"blocked"`
}

// MonitorSnapshot is the full live view of an exam.
type MonitorSnapshot struct {
	Live            []CandidateProgress `json:"live"`
	Blocked         []model.BlockRecord `json:"blocked"`
	SubmittedCount  int64               `json:"submitted_count"`
	TotalViolations int64               `json:"total_violations"`
}

// GetSnapshot returns live attempts, violation counts, blocks and the
// submission count. The four fetches run concurrently.
func (s *MonitorService) GetSnapshot(ctx context.Context, examID uuid.UUID) (*MonitorSnapshot, error) {
	var (
		live       []repository.LiveAttempt
		violations map[string]map[string]int64
		blocks     []model.BlockRecord
		submitted  int64
		liveErr    error
		violErr    error
		blockErr   error
		submitErr  error
		wg         sync.WaitGroup
	)

	wg.Add(4)
	go func() {
		defer wg.Done()
		live, liveErr = s.monitorRepo.GetLiveAttempts(ctx, examID)
	}()
	go func() {
		defer wg.Done()
		violations, violErr = s.monitorRepo.GetViolationCounts(ctx, examID)
	}()
	go func() {
		defer wg.Done()
		blocks, blockErr = s.blockRepo.ListByExam(ctx, examID, true)
	}()
	go func() {
		defer wg.Done()
		submitted, submitErr = s.monitorRepo.CountSubmissions(ctx, examID)
	}()
	wg.Wait()

	// Live attempts are critical; the rest is best-effort.
	if liveErr != nil {
		return nil, liveErr
	}
	if violErr != nil {
		violations = nil
	}
	if blockErr != nil || blocks == nil {
		blocks = []model.BlockRecord{}
	}
	if submitErr != nil {
		submitted = 0
	}

	return buildSnapshot(s.now(), live, violations, blocks, submitted), nil
}

func buildSnapshot(now time.Time, live []repository.LiveAttempt, violations map[string]map[string]int64, blocks []model.BlockRecord, submitted int64) *MonitorSnapshot {
	blocked := make(map[string]bool, len(blocks))
	for _, b := range blocks {
		blocked[b.Phone] = b.Blocked
	}

	snap := &MonitorSnapshot{
		Live:           make([]CandidateProgress, 0, len(live)),
		Blocked:        blocks,
		SubmittedCount: submitted,
	}
	for _, a := range live {
		counts := violations[a.Phone]
		if counts == nil {
			counts = map[string]int64{}
		}
		snap.Live = append(snap.Live, CandidateProgress{
			Phone:          a.Phone,
			StartedAt:      a.StartedAt,
			ElapsedSeconds: int64(now.Sub(a.StartedAt) / time.Second),
			Violations:     counts,
			Blocked:        blocked[a.Phone],
		})
	}
	for _, kinds := range violations {
		for _, n := range kinds {
			snap.TotalViolations += n
		}
	}
	sort.Slice(snap.Live, func(i, j int) bool {
		return snap.Live[i].StartedAt.Before(snap.Live[j].StartedAt)
	})
	return snap
}
