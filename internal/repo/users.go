package repo

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/fraud_reporting/internal/models"
)

type UserSearch struct {
	Email     string
	FirstName string
	LastName  string
}

// Normalized trims every criterion and lowercases the email the way signup
// stores it.
func (s UserSearch) Normalized() UserSearch {
	return UserSearch{
		Email:     strings.ToLower(strings.TrimSpace(s.Email)),
		FirstName: strings.TrimSpace(s.FirstName),
		LastName:  strings.TrimSpace(s.LastName),
	}
}

func (s UserSearch) Empty() bool {
	n := s.Normalized()
	return n.Email == "" && n.FirstName == "" && n.LastName == ""
}

func (r *GormRepo) FindUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).Where("id = ?", id).Take(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *GormRepo) UpdateUserNames(ctx context.Context, id uuid.UUID, firstName, lastName string) (*models.User, error) {
	updates := map[string]any{}
	if firstName != "" {
		updates["first_name"] = firstName
	}
	if lastName != "" {
		updates["last_name"] = lastName
	}
	if len(updates) > 0 {
		res := r.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, ErrNotFound
		}
	}
	return r.FindUser(ctx, id)
}

func (r *GormRepo) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.DB.WithContext(ctx).Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *GormRepo) userSearch(ctx context.Context, s UserSearch) *gorm.DB {
	s = s.Normalized()
	q := r.DB.WithContext(ctx).Model(&models.User{})
	if s.Email != "" {
		q = q.Where("email = ?", s.Email)
	}
	if s.FirstName != "" {
		q = whereContainsFold(q, "first_name", s.FirstName)
	}
	if s.LastName != "" {
		q = whereContainsFold(q, "last_name", s.LastName)
	}
	return q
}

// SearchUsers matches the normalized email exactly and names as
// case-insensitive substrings.
func (r *GormRepo) SearchUsers(ctx context.Context, s UserSearch) ([]models.User, error) {
	var users []models.User
	if err := r.userSearch(ctx, s).Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// MatchUserIDs resolves the same criteria as SearchUsers to user ids.
func (r *GormRepo) MatchUserIDs(ctx context.Context, s UserSearch) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.userSearch(ctx, s).Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *GormRepo) BlockUser(ctx context.Context, id uuid.UUID) error {
	res := r.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("is_blocked", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
