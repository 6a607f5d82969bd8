package postgres

import (
	"context"
	"fmt"
	"time"

	"job-alert-engine/internal/models"

	"github.com/gocraft/dbr/v2"
	"go.uber.org/zap"
)

// searchHistoryLimit bounds how many recent searches ride along with a user.
const searchHistoryLimit = 20

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	_, err := s.sess.
		InsertInto("users").
		Columns("id", "email", "name", "skills", "saved_keywords", "created_at").
		Values(user.ID, user.Email, user.Name, user.Skills, user.SavedKeywords, time.Now()).
		ExecContext(ctx)

	if err != nil {
		s.logger.Error("failed to create user",
			zap.String("user_id", user.ID),
			zap.Error(err),
		)
		return fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user created",
		zap.String("user_id", user.ID),
		zap.String("email", user.Email),
	)

	return nil
}

// UserByID loads a user with their most recent searches attached. Returns
// nil, nil when the user does not exist.
func (s *Store) UserByID(ctx context.Context, userID string) (*models.User, error) {
	var user models.User

	err := s.sess.
		Select("*").
		From("users").
		Where("id = ?", userID).
		LoadOneContext(ctx, &user)

	if err == dbr.ErrNotFound {
		return nil, nil
	}

	if err != nil {
		s.logger.Error("failed to get user",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("get user: %w", err)
	}

	history, err := s.searchHistory(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.SearchHistory = history

	return &user, nil
}

func (s *Store) searchHistory(ctx context.Context, userID string) ([]models.SearchEntry, error) {
	var entries []models.SearchEntry

	_, err := s.sess.
		Select("term", "searched_at").
		From("search_history").
		Where("user_id = ?", userID).
		OrderBy("searched_at DESC").
		Limit(searchHistoryLimit).
		LoadContext(ctx, &entries)

	if err != nil {
		s.logger.Error("failed to get search history",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("get search history: %w", err)
	}

	return entries, nil
}

func (s *Store) UpdateUserProfile(ctx context.Context, user *models.User) error {
	_, err := s.sess.
		Update("users").
		Set("name", user.Name).
		Set("skills", user.Skills).
		Set("saved_keywords", user.SavedKeywords).
		Where("id = ?", user.ID).
		ExecContext(ctx)

	if err != nil {
		s.logger.Error("failed to update user profile",
			zap.String("user_id", user.ID),
			zap.Error(err),
		)
		return fmt.Errorf("update user profile: %w", err)
	}

	s.logger.Info("user profile updated", zap.String("user_id", user.ID))
	return nil
}

// RecordSearch appends a search term to the user's history and trims entries
// beyond the window the matcher looks at.
func (s *Store) RecordSearch(ctx context.Context, userID, term string) error {
	_, err := s.sess.
		InsertInto("search_history").
		Columns("user_id", "term", "searched_at").
		Values(userID, term, time.Now()).
		ExecContext(ctx)

	if err != nil {
		s.logger.Error("failed to record search",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return fmt.Errorf("record search: %w", err)
	}

	trim := `
		DELETE FROM search_history
		WHERE user_id = $1
		AND id NOT IN (
			SELECT id FROM search_history
			WHERE user_id = $1
			ORDER BY searched_at DESC
			LIMIT $2
		)
	`

	if _, err := s.sess.ExecContext(ctx, trim, userID, searchHistoryLimit); err != nil {
		s.logger.Error("failed to trim search history",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return fmt.Errorf("trim search history: %w", err)
	}

	return nil
}

func (s *Store) DeleteUser(ctx context.Context, userID string) error {
	_, err := s.sess.
		DeleteFrom("users").
		Where("id = ?", userID).
		ExecContext(ctx)

	if err != nil {
		s.logger.Error("failed to delete user",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return fmt.Errorf("delete user: %w", err)
	}

	s.logger.Info("user deleted", zap.String("user_id", userID))
	return nil
}
