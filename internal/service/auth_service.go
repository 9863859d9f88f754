package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
	"gorm.io/gorm"

	"github.com/breathfree/quit_go_server/config"
	"github.com/breathfree/quit_go_server/internal/model"
	"github.com/breathfree/quit_go_server/internal/model/dto"
	"github.com/breathfree/quit_go_server/internal/pkg/jwt"
	"github.com/breathfree/quit_go_server/internal/pkg/oauth"
	"github.com/breathfree/quit_go_server/internal/pkg/queue"
	"github.com/breathfree/quit_go_server/internal/repository"
)

var (
	ErrEmailExists        = errors.New("Email đã được sử dụng")
	ErrUsernameExists     = errors.New("Tên đăng nhập đã được sử dụng")
	ErrInvalidCredentials = errors.New("Email hoặc mật khẩu không đúng")
	ErrUserNotFound       = errors.New("Không tìm thấy người dùng")
	ErrUserBanned         = errors.New("Tài khoản của bạn đã bị khóa")
	ErrRoleMismatch       = errors.New("Tài khoản không có quyền đăng nhập với vai trò này")
	ErrOAuthFailed        = errors.New("Đăng nhập Google thất bại")
)

// GoogleProvider Google OAuth 客户端
type GoogleProvider interface {
	GetAuthURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	GetUser(ctx context.Context, token *oauth2.Token) (*oauth.GoogleUser, error)
}

type AuthService struct {
	userRepo      *repository.UserRepository
	cfg           *config.Config
	google        GoogleProvider
	states        *oauth.StateStore
	notifications NotificationQueue
}

func NewAuthService(userRepo *repository.UserRepository, states *oauth.StateStore, notifications NotificationQueue, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		cfg:      cfg,
		google: oauth.NewGoogleOAuth(
			cfg.OAuth.Google.ClientID,
			cfg.OAuth.Google.ClientSecret,
			cfg.OAuth.Google.RedirectURI,
		),
		states:        states,
		notifications: notifications,
	}
}

// Register 会员注册
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	email := normalizeEmail(req.Email)

	exists, err := s.userRepo.ExistsByEmail(email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailExists
	}

	exists, err = s.userRepo.ExistsByUsername(req.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUsernameExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	passwordStr := string(hashedPassword)
	user := &model.User{
		Username:     req.Username,
		Email:        &email,
		PasswordHash: &passwordStr,
		FullName:     strings.TrimSpace(req.FullName),
		Role:         model.RoleMember,
		Status:       model.UserStatusActive,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	s.welcome(ctx, user)

	return &dto.RegisterResponse{
		UserID: user.ID,
	}, nil
}

// Login 登录；指定 Role 时必须与账号角色一致
func (s *AuthService) Login(req *dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.userRepo.GetByEmail(normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if user.PasswordHash == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issue(user, req.Role)
}

// GetUserByID 根据 ID 获取用户
func (s *AuthService) GetUserByID(id int64) (*model.User, error) {
	return s.userRepo.GetByID(id)
}

// GetGoogleAuthURL 生成 state 并返回 Google 授权地址
func (s *AuthService) GetGoogleAuthURL(ctx context.Context, role string) (string, error) {
	state, err := s.states.GenerateState(ctx, oauth.StateData{
		RedirectURI: s.cfg.OAuth.Google.FrontendURL,
		Role:        role,
	})
	if err != nil {
		return "", err
	}
	return s.google.GetAuthURL(state), nil
}

// GoogleCallback 校验 state 后登录；首次登录创建会员账号，同邮箱账号自动绑定
func (s *AuthService) GoogleCallback(ctx context.Context, code, state string) (*dto.LoginResponse, string, error) {
	data, err := s.states.ValidateState(ctx, state)
	if err != nil {
		return nil, "", err
	}

	token, err := s.google.Exchange(ctx, code)
	if err != nil {
		log.Warn().Err(err).Msg("google code exchange failed")
		return nil, data.RedirectURI, ErrOAuthFailed
	}
	googleUser, err := s.google.GetUser(ctx, token)
	if err != nil {
		log.Warn().Err(err).Msg("failed to fetch google user")
		return nil, data.RedirectURI, ErrOAuthFailed
	}

	user, err := s.findOrCreateGoogleUser(ctx, googleUser)
	if err != nil {
		return nil, data.RedirectURI, err
	}

	resp, err := s.issue(user, data.Role)
	return resp, data.RedirectURI, err
}

func (s *AuthService) findOrCreateGoogleUser(ctx context.Context, g *oauth.GoogleUser) (*model.User, error) {
	user, err := s.userRepo.GetByGoogleID(g.Sub)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	email := normalizeEmail(g.Email)
	user, err = s.userRepo.GetByEmail(email)
	if err == nil {
		// 绑定到已有账号
		if err := s.userRepo.UpdateFields(user.ID, map[string]interface{}{"google_id": g.Sub}); err != nil {
			return nil, err
		}
		user.GoogleID = &g.Sub
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	googleID := g.Sub
	user = &model.User{
		Username:  strings.SplitN(email, "@", 2)[0],
		Email:     &email,
		GoogleID:  &googleID,
		FullName:  g.Name,
		AvatarURL: g.Picture,
		Role:      model.RoleMember,
		Status:    model.UserStatusActive,
	}

	// 确保用户名唯一
	exists, err := s.userRepo.ExistsByUsername(user.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		suffix := g.Sub
		if len(suffix) > 6 {
			suffix = suffix[len(suffix)-6:]
		}
		user.Username = fmt.Sprintf("%s_%s", user.Username, suffix)
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	s.welcome(ctx, user)
	return user, nil
}

func (s *AuthService) issue(user *model.User, role string) (*dto.LoginResponse, error) {
	if user.Status == model.UserStatusBanned {
		return nil, ErrUserBanned
	}
	if role != "" && role != user.Role {
		return nil, ErrRoleMismatch
	}

	token, err := jwt.GenerateToken(user.ID, user.Role, s.cfg.JWT.Secret, s.cfg.JWT.ExpireHours)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		Token: token,
		User:  toUserInfo(user),
	}, nil
}

func (s *AuthService) welcome(ctx context.Context, user *model.User) {
	if s.notifications == nil {
		return
	}
	err := s.notifications.Push(ctx, &queue.Notification{
		Kind:   queue.KindWelcome,
		UserID: user.ID,
	})
	if err != nil {
		log.Warn().Err(err).Int64("user_id", user.ID).Msg("failed to enqueue welcome email")
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
