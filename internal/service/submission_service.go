package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/repository"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/response"
)

// SubmissionService serves the admin view of final submissions.
type SubmissionService struct {
	submissionRepo *repository.SubmissionRepository
}

// NewSubmissionService creates a new SubmissionService.
func NewSubmissionService(submissionRepo *repository.SubmissionRepository) *SubmissionService {
	return &SubmissionService{submissionRepo: submissionRepo}
}

// List retrieves a page of an exam's submissions.
func (s *SubmissionService) List(ctx context.Context, examID uuid.UUID, page, perPage int) ([]repository.SubmissionSummary, *response.Pagination, error) {
	page, perPage = clampPage(page, perPage)

	items, total, err := s.submissionRepo.ListByExam(ctx, examID, page, perPage)
	if err != nil {
		return nil, nil, err
	}
	if items == nil {
		items = []repository.SubmissionSummary{}
	}

	return items, paginate(page, perPage, int(total)), nil
}

func clampPage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	if perPage > 100 {
		perPage = 100
	}
	return page, perPage
}

func paginate(page, perPage, total int) *response.Pagination {
	return &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: (total + perPage - 1) / perPage,
	}
}
