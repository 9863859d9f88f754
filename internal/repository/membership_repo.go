package repository

import (
	"gorm.io/gorm"

	"github.com/breathfree/quit_go_server/internal/model"
)

type MembershipRepository struct {
	db *gorm.DB
}

func NewMembershipRepository(db *gorm.DB) *MembershipRepository {
	return &MembershipRepository{db: db}
}

func (r *MembershipRepository) Create(m *model.Membership) error {
	return r.db.Create(m).Error
}

func (r *MembershipRepository) GetByID(id int64) (*model.Membership, error) {
	var m model.Membership
	err := r.db.Where("id = ?", id).First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// List 套餐列表，activeOnly 时只返回上架套餐
func (r *MembershipRepository) List(activeOnly bool) ([]*model.Membership, error) {
	var list []*model.Membership
	query := r.db.Model(&model.Membership{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	err := query.Order("price ASC").Find(&list).Error
	return list, err
}

func (r *MembershipRepository) Update(m *model.Membership) error {
	return r.db.Save(m).Error
}

func (r *MembershipRepository) Delete(id int64) error {
	return r.db.Delete(&model.Membership{}, id).Error
}
