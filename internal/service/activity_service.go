package service

import (
	"context"
	"log"

	"securecollab/internal/domain"
)

// ActivityService пишет журнал действий над файлами. Запись выполняется
// по принципу fire-and-forget: сбой журналирования не должен прерывать
// файловую операцию и не подменяет ее исходную ошибку.
type ActivityService struct {
	repo ActivityRepository
}

func NewActivityService(repo ActivityRepository) *ActivityService {
	return &ActivityService{repo: repo}
}

func (s *ActivityService) Record(
	ctx context.Context,
	activityType domain.ActivityType,
	fileID int64,
	actorID int64,
	details string,
) {
	activity := &domain.Activity{
		Type:    activityType,
		FileID:  fileID,
		UserID:  actorID,
		Details: details,
	}

	if err := s.repo.Create(ctx, activity); err != nil {
		log.Printf("warning: failed to record %s activity for file %d: %v", activityType, fileID, err)
	}
}
