package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/xiaot623/gogo/chatapi/internal/domain"
)

// ListActivities returns all activities keyed by name.
func (s *Service) ListActivities(ctx context.Context) (map[string]domain.Activity, error) {
	activities, err := s.store.ListActivities(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	result := make(map[string]domain.Activity, len(activities))
	for _, a := range activities {
		result[a.Name] = a
	}
	return result, nil
}

// SignUp adds email to the activity's participants.
func (s *Service) SignUp(ctx context.Context, activityName, email string) error {
	activity, err := s.getActivity(ctx, activityName)
	if err != nil {
		return err
	}
	if activity.HasParticipant(email) {
		return domain.ErrAlreadySignedUp
	}

	added, err := s.store.AddParticipant(ctx, activityName, email)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadySignedUp) {
			return err
		}
		return fmt.Errorf("failed to add participant: %w", err)
	}
	if !added {
		return domain.ErrActivityFull
	}

	s.logger.Info("participant signed up", "activity", activityName, "email", email)
	return nil
}

// RemoveParticipant removes email from the activity's participants.
func (s *Service) RemoveParticipant(ctx context.Context, activityName, email string) error {
	if _, err := s.getActivity(ctx, activityName); err != nil {
		return err
	}

	removed, err := s.store.RemoveParticipant(ctx, activityName, email)
	if err != nil {
		return fmt.Errorf("failed to remove participant: %w", err)
	}
	if !removed {
		return &domain.NotFoundError{Resource: "Participant", Key: email}
	}

	s.logger.Info("participant removed", "activity", activityName, "email", email)
	return nil
}

func (s *Service) getActivity(ctx context.Context, name string) (*domain.Activity, error) {
	activity, err := s.store.GetActivity(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}
	if activity == nil {
		return nil, &domain.NotFoundError{Resource: "Activity", Key: name}
	}
	return activity, nil
}
