package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/fraud_reporting/internal/models"
)

const (
	UsersTable  = "users"
	AdminsTable = "admins"
)

// IdentityRepo reads and writes the credential columns of one principal
// table. Users and admins live in separate tables and never share lookups.
type IdentityRepo struct {
	DB    *gorm.DB
	Table string
}

func NewUserIdentities(db *gorm.DB) *IdentityRepo {
	return &IdentityRepo{DB: db, Table: UsersTable}
}

func NewAdminIdentities(db *gorm.DB) *IdentityRepo {
	return &IdentityRepo{DB: db, Table: AdminsTable}
}

func (r *IdentityRepo) q(ctx context.Context) *gorm.DB {
	return r.DB.WithContext(ctx).Table(r.Table)
}

func (r *IdentityRepo) Create(ctx context.Context, ident *models.Identity) error {
	return translate(r.q(ctx).Create(ident).Error)
}

func (r *IdentityRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	var n int64
	if err := r.q(ctx).Where("email = ?", email).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *IdentityRepo) FindByEmail(ctx context.Context, email string) (*models.Identity, error) {
	var ident models.Identity
	if err := r.q(ctx).Where("email = ?", email).Take(&ident).Error; err != nil {
		return nil, translate(err)
	}
	return &ident, nil
}

func (r *IdentityRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Identity, error) {
	var ident models.Identity
	if err := r.q(ctx).Where("id = ?", id).Take(&ident).Error; err != nil {
		return nil, translate(err)
	}
	return &ident, nil
}

func (r *IdentityRepo) FindByRefreshToken(ctx context.Context, token string) (*models.Identity, error) {
	var ident models.Identity
	if err := r.q(ctx).Where("refresh_token = ?", token).Take(&ident).Error; err != nil {
		return nil, translate(err)
	}
	return &ident, nil
}

// SetRefreshToken stores token as the only live refresh token of the
// principal. A nil token ends the session.
func (r *IdentityRepo) SetRefreshToken(ctx context.Context, id uuid.UUID, token *string) error {
	res := r.q(ctx).Where("id = ?", id).Update("refresh_token", token)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
