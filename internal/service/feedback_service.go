package service

import (
	"errors"
	"strings"

	"github.com/breathfree/quit_go_server/internal/model"
	"github.com/breathfree/quit_go_server/internal/model/dto"
	"github.com/breathfree/quit_go_server/internal/repository"
)

var (
	ErrFeedbackNotFound = errors.New("Không tìm thấy phản hồi")
	ErrRatingNotFound   = errors.New("Không tìm thấy đánh giá")
	ErrEmptyFeedback    = errors.New("Nội dung phản hồi không được để trống")
)

type FeedbackService struct {
	feedbackRepo *repository.FeedbackRepository
}

func NewFeedbackService(feedbackRepo *repository.FeedbackRepository) *FeedbackService {
	return &FeedbackService{feedbackRepo: feedbackRepo}
}

func (s *FeedbackService) Submit(userID int64, req *dto.FeedbackRequest) (*dto.FeedbackInfo, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, ErrEmptyFeedback
	}

	f := &model.Feedback{
		UserID:  userID,
		Content: content,
		Status:  model.FeedbackPending,
	}
	if err := s.feedbackRepo.CreateFeedback(f); err != nil {
		return nil, err
	}
	return toFeedbackInfo(f), nil
}

func (s *FeedbackService) Rate(userID int64, req *dto.RatingRequest) (*dto.RatingInfo, error) {
	r := &model.Rating{
		UserID:  userID,
		Score:   req.Score,
		Comment: strings.TrimSpace(req.Comment),
	}
	if err := s.feedbackRepo.CreateRating(r); err != nil {
		return nil, err
	}
	return toRatingInfo(r), nil
}

func (s *FeedbackService) ListFeedback(status string, page, pageSize int) ([]*dto.FeedbackInfo, int64, error) {
	list, total, err := s.feedbackRepo.ListFeedback(status, page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	items := make([]*dto.FeedbackInfo, 0, len(list))
	for _, f := range list {
		items = append(items, toFeedbackInfo(f))
	}
	return items, total, nil
}

func (s *FeedbackService) UpdateFeedbackStatus(id int64, status string) error {
	ok, err := s.feedbackRepo.UpdateFeedbackStatus(id, status)
	if err != nil {
		return err
	}
	if !ok {
		return ErrFeedbackNotFound
	}
	return nil
}

func (s *FeedbackService) DeleteFeedback(id int64) error {
	ok, err := s.feedbackRepo.DeleteFeedback(id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrFeedbackNotFound
	}
	return nil
}

func (s *FeedbackService) ListRatings(page, pageSize int) ([]*dto.RatingInfo, int64, error) {
	list, total, err := s.feedbackRepo.ListRatings(page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	items := make([]*dto.RatingInfo, 0, len(list))
	for _, r := range list {
		items = append(items, toRatingInfo(r))
	}
	return items, total, nil
}

func (s *FeedbackService) DeleteRating(id int64) error {
	ok, err := s.feedbackRepo.DeleteRating(id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrRatingNotFound
	}
	return nil
}

func toFeedbackInfo(f *model.Feedback) *dto.FeedbackInfo {
	info := &dto.FeedbackInfo{
		ID:        f.ID,
		UserID:    f.UserID,
		Content:   f.Content,
		Status:    f.Status,
		CreatedAt: f.CreatedAt,
	}
	if f.User != nil {
		info.Username = f.User.Username
	}
	return info
}

func toRatingInfo(r *model.Rating) *dto.RatingInfo {
	info := &dto.RatingInfo{
		ID:        r.ID,
		UserID:    r.UserID,
		Score:     r.Score,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
	}
	if r.User != nil {
		info.Username = r.User.Username
	}
	return info
}
