package service

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/breathfree/quit_go_server/internal/model"
	"github.com/breathfree/quit_go_server/internal/model/dto"
	"github.com/breathfree/quit_go_server/internal/repository"
)

var (
	ErrMembershipNotFound = errors.New("Không tìm thấy gói thành viên")
	ErrMembershipInvalid  = errors.New("Thông tin gói thành viên không hợp lệ")
)

type MembershipService struct {
	membershipRepo *repository.MembershipRepository
}

func NewMembershipService(membershipRepo *repository.MembershipRepository) *MembershipService {
	return &MembershipService{membershipRepo: membershipRepo}
}

// List 套餐列表，activeOnly 为 false 时包含已下架套餐（管理后台）
func (s *MembershipService) List(activeOnly bool) ([]*dto.MembershipInfo, error) {
	items, err := s.membershipRepo.List(activeOnly)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.MembershipInfo, 0, len(items))
	for _, m := range items {
		result = append(result, toMembershipInfo(m))
	}
	return result, nil
}

func (s *MembershipService) Get(id int64) (*dto.MembershipInfo, error) {
	m, err := s.membershipRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMembershipNotFound
		}
		return nil, err
	}
	return toMembershipInfo(m), nil
}

func (s *MembershipService) Create(req *dto.MembershipRequest) (*dto.MembershipInfo, error) {
	m := &model.Membership{IsActive: true}
	if err := applyMembership(m, req); err != nil {
		return nil, err
	}
	if err := s.membershipRepo.Create(m); err != nil {
		return nil, err
	}
	return toMembershipInfo(m), nil
}

func (s *MembershipService) Update(id int64, req *dto.MembershipRequest) (*dto.MembershipInfo, error) {
	m, err := s.membershipRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMembershipNotFound
		}
		return nil, err
	}

	if err := applyMembership(m, req); err != nil {
		return nil, err
	}
	if err := s.membershipRepo.Update(m); err != nil {
		return nil, err
	}
	return toMembershipInfo(m), nil
}

func (s *MembershipService) Delete(id int64) error {
	if _, err := s.membershipRepo.GetByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMembershipNotFound
		}
		return err
	}
	return s.membershipRepo.Delete(id)
}

func applyMembership(m *model.Membership, req *dto.MembershipRequest) error {
	name := strings.TrimSpace(req.Name)
	if name == "" || req.Price <= 0 || req.DurationDays <= 0 {
		return ErrMembershipInvalid
	}

	m.Name = name
	m.Price = req.Price
	m.DurationDays = req.DurationDays
	m.Description = req.Description
	m.Features = model.StringSlice(req.Features)
	if req.IsActive != nil {
		m.IsActive = *req.IsActive
	}
	return nil
}
