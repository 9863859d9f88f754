package service

import (
	"errors"

	"gorm.io/gorm"

	"github.com/breathfree/quit_go_server/internal/domain/quitplan"
	"github.com/breathfree/quit_go_server/internal/model"
	"github.com/breathfree/quit_go_server/internal/model/dto"
	"github.com/breathfree/quit_go_server/internal/repository"
)

var ErrSmokingStatusNotFound = errors.New("Bạn chưa khai báo tình trạng hút thuốc")

type SmokingStatusService struct {
	smokingRepo *repository.SmokingStatusRepository
}

func NewSmokingStatusService(smokingRepo *repository.SmokingStatusRepository) *SmokingStatusService {
	return &SmokingStatusService{smokingRepo: smokingRepo}
}

func (s *SmokingStatusService) Get(userID int64) (*dto.SmokingStatusInfo, error) {
	status, err := s.smokingRepo.GetByUser(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSmokingStatusNotFound
		}
		return nil, err
	}
	return toSmokingStatusInfo(status), nil
}

// Upsert 每个用户只保留一条基线
func (s *SmokingStatusService) Upsert(userID int64, req *dto.SmokingStatusRequest) (*dto.SmokingStatusInfo, error) {
	status := &model.SmokingStatus{
		UserID:            userID,
		CigarettesPerDay:  req.CigarettesPerDay,
		PricePerCigarette: req.PricePerCigarette,
		SmokingYears:      req.SmokingYears,
		Notes:             req.Notes,
	}
	if err := s.smokingRepo.Upsert(status); err != nil {
		return nil, err
	}
	return s.Get(userID)
}

func (s *SmokingStatusService) Delete(userID int64) error {
	ok, err := s.smokingRepo.DeleteByUser(userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrSmokingStatusNotFound
	}
	return nil
}

// Baseline 未声明时返回零值，由调用方判断 Declared
func (s *SmokingStatusService) Baseline(userID int64) (quitplan.Baseline, error) {
	return loadBaseline(s.smokingRepo, userID)
}

func loadBaseline(repo *repository.SmokingStatusRepository, userID int64) (quitplan.Baseline, error) {
	status, err := repo.GetByUser(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return quitplan.Baseline{}, nil
		}
		return quitplan.Baseline{}, err
	}
	return quitplan.Baseline{
		CigarettesPerDay:  status.CigarettesPerDay,
		PricePerCigarette: status.PricePerCigarette,
	}, nil
}

func toSmokingStatusInfo(status *model.SmokingStatus) *dto.SmokingStatusInfo {
	b := quitplan.Baseline{
		CigarettesPerDay:  status.CigarettesPerDay,
		PricePerCigarette: status.PricePerCigarette,
	}
	daily := b.DailyCost()
	return &dto.SmokingStatusInfo{
		ID:                status.ID,
		CigarettesPerDay:  status.CigarettesPerDay,
		PricePerCigarette: status.PricePerCigarette,
		SmokingYears:      status.SmokingYears,
		Notes:             status.Notes,
		Declared:          b.Declared(),
		DailyCost:         daily,
		MonthlyCost:       daily * 30,
		YearlyCost:        daily * 365,
		UpdatedAt:         status.UpdatedAt,
	}
}
