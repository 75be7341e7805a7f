package repository

import (
	"context"

	"creator-performance-ledger/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MemberRepository struct {
	db *gorm.DB
}

func NewMemberRepository(db *gorm.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

// ListCreators returns every creator in roster order.
func (r *MemberRepository) ListCreators(ctx context.Context) ([]models.Member, error) {
	var members []models.Member
	err := r.db.WithContext(ctx).
		Where("role = ?", models.RoleCreator).
		Order("created_at ASC, id ASC").
		Find(&members).Error
	return members, err
}

func (r *MemberRepository) ListMembers(ctx context.Context) ([]models.Member, error) {
	var members []models.Member
	err := r.db.WithContext(ctx).Order("created_at ASC, id ASC").Find(&members).Error
	return members, err
}

func (r *MemberRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Member, error) {
	var m models.Member
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &m, nil
}
