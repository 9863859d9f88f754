package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/breathfree/quit_go_server/internal/model"
	"github.com/breathfree/quit_go_server/internal/pkg/queue"
)

var ErrUnknownKind = errors.New("unknown notification kind")

// UserLookup 查询收件人
type UserLookup interface {
	GetByID(id int64) (*model.User, error)
}

// Mailer 发送通知邮件
type Mailer interface {
	SendExpiryReminder(to, username, membership string, daysRemaining int, endDate time.Time) error
	SendPaymentReceipt(to, username, membership string, amount int64, endDate time.Time) error
	SendWelcome(to, username string) error
}

// Processor 通知处理器
type Processor struct {
	users  UserLookup
	mailer Mailer
}

// NewProcessor 创建通知处理器
func NewProcessor(users UserLookup, mailer Mailer) *Processor {
	return &Processor{
		users:  users,
		mailer: mailer,
	}
}

// Process 处理一条通知。用户已删除或没有邮箱时跳过
func (p *Processor) Process(ctx context.Context, msg *queue.Notification) error {
	user, err := p.users.GetByID(msg.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn().Int64("user_id", msg.UserID).Str("kind", msg.Kind).Msg("notification skipped: user not found")
			return nil
		}
		return fmt.Errorf("failed to load user: %w", err)
	}
	if user.Email == nil || *user.Email == "" {
		log.Debug().Int64("user_id", user.ID).Str("kind", msg.Kind).Msg("notification skipped: no email")
		return nil
	}

	to := *user.Email
	name := user.FullName
	if name == "" {
		name = user.Username
	}

	switch msg.Kind {
	case queue.KindExpiryReminder:
		err = p.mailer.SendExpiryReminder(to, name, msg.MembershipName, msg.DaysRemaining, msg.EndDate)
	case queue.KindPaymentReceipt:
		err = p.mailer.SendPaymentReceipt(to, name, msg.MembershipName, msg.Amount, msg.EndDate)
	case queue.KindWelcome:
		err = p.mailer.SendWelcome(to, name)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, msg.Kind)
	}
	if err != nil {
		return fmt.Errorf("failed to send %s email: %w", msg.Kind, err)
	}

	log.Info().Int64("user_id", user.ID).Str("kind", msg.Kind).
		Dur("queued_for", time.Since(msg.EnqueuedAt)).Msg("notification sent")
	return nil
}
