package service

import (
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/breathfree/quit_go_server/internal/model/dto"
	"github.com/breathfree/quit_go_server/internal/repository"
)

var (
	ErrStorageUnavailable = errors.New("Dịch vụ lưu trữ chưa được cấu hình")
	ErrInvalidAvatar      = errors.New("Định dạng ảnh đại diện không hợp lệ")
)

// AvatarStorage 头像存储
type AvatarStorage interface {
	UploadAvatar(userID int64, data []byte, ext string) (string, error)
	Delete(objectKey string) error
	ExtractObjectKey(url string) string
}

type UserService struct {
	userRepo *repository.UserRepository
	storage  AvatarStorage
}

// NewUserService storage 可为 nil，此时不支持上传头像
func NewUserService(userRepo *repository.UserRepository, storage AvatarStorage) *UserService {
	return &UserService{
		userRepo: userRepo,
		storage:  storage,
	}
}

// GetProfile 获取用户详情
func (s *UserService) GetProfile(userID int64) (*dto.UserInfo, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return toUserInfo(user), nil
}

// UpdateProfile 更新用户信息
func (s *UserService) UpdateProfile(userID int64, req *dto.UpdateProfileRequest) (*dto.UserInfo, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	// 检查用户名是否已被占用
	if req.Username != nil && *req.Username != user.Username {
		exists, err := s.userRepo.ExistsByUsername(*req.Username)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrUsernameExists
		}
		user.Username = *req.Username
	}

	if req.FullName != nil {
		user.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Phone != nil {
		user.Phone = strings.TrimSpace(*req.Phone)
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

// UploadAvatar 上传头像并删除旧头像
func (s *UserService) UploadAvatar(userID int64, file io.Reader, filename string) (string, error) {
	if s.storage == nil {
		return "", ErrStorageUnavailable
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case "":
		ext = ".jpg"
	case ".jpg", ".jpeg", ".png", ".webp":
	default:
		return "", ErrInvalidAvatar
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}

	avatarURL, err := s.storage.UploadAvatar(userID, data, ext)
	if err != nil {
		return "", err
	}

	if err := s.userRepo.UpdateFields(userID, map[string]interface{}{"avatar_url": avatarURL}); err != nil {
		return "", err
	}

	// 第三方头像返回空 key
	if old := s.storage.ExtractObjectKey(user.AvatarURL); old != "" {
		if err := s.storage.Delete(old); err != nil {
			log.Warn().Err(err).Str("key", old).Msg("failed to delete old avatar")
		}
	}

	return avatarURL, nil
}
