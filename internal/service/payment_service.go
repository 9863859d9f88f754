package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/breathfree/quit_go_server/config"
	"github.com/breathfree/quit_go_server/internal/domain/payment"
	"github.com/breathfree/quit_go_server/internal/domain/subscription"
	"github.com/breathfree/quit_go_server/internal/model"
	"github.com/breathfree/quit_go_server/internal/model/dto"
	"github.com/breathfree/quit_go_server/internal/pkg/intent"
	"github.com/breathfree/quit_go_server/internal/pkg/metrics"
	"github.com/breathfree/quit_go_server/internal/pkg/qr"
	"github.com/breathfree/quit_go_server/internal/pkg/queue"
	"github.com/breathfree/quit_go_server/internal/repository"
)

var (
	ErrAlreadySubscribed        = errors.New("Bạn đang có gói thành viên còn hiệu lực, vui lòng chọn gia hạn")
	ErrSubscriptionNotRenewable = errors.New("Gói thành viên không thể gia hạn")
	ErrOrderNotFound            = errors.New("Không tìm thấy giao dịch")
	ErrOrderNotPending          = errors.New("Giao dịch đã được xử lý")
	ErrIntentMismatch           = errors.New("Thông tin thanh toán không khớp")
	ErrAmountMismatch           = errors.New("Số tiền thanh toán không khớp")
	ErrIntentExpired            = errors.New("Phiên thanh toán đã hết hạn, vui lòng thử lại")
)

// NotificationQueue 通知队列
type NotificationQueue interface {
	Push(ctx context.Context, msg *queue.Notification) error
}

type PaymentService struct {
	db             *gorm.DB
	membershipRepo *repository.MembershipRepository
	subRepo        *repository.SubscriptionRepository
	orderRepo      *repository.OrderRepository
	subService     *SubscriptionService
	intents        *intent.Store
	notifications  NotificationQueue
	gateway        payment.Gateway
	orderTTL       time.Duration
	now            func() time.Time
}

func NewPaymentService(
	db *gorm.DB,
	membershipRepo *repository.MembershipRepository,
	subRepo *repository.SubscriptionRepository,
	orderRepo *repository.OrderRepository,
	subService *SubscriptionService,
	intents *intent.Store,
	notifications NotificationQueue,
	cfg *config.Config,
) *PaymentService {
	return &PaymentService{
		db:             db,
		membershipRepo: membershipRepo,
		subRepo:        subRepo,
		orderRepo:      orderRepo,
		subService:     subService,
		intents:        intents,
		notifications:  notifications,
		gateway: payment.Gateway{
			TmnCode:    cfg.Payment.TmnCode,
			HashSecret: cfg.Payment.HashSecret,
			PayURL:     cfg.Payment.PayURL,
			ReturnURL:  cfg.Payment.ReturnURL,
			Locale:     cfg.Payment.Locale,
		},
		orderTTL: cfg.Payment.OrderTTLDuration(),
		now:      time.Now,
	}
}

// Create 创建订单并返回签名后的支付链接；意图在跳转前写入 redis
func (s *PaymentService) Create(ctx context.Context, userID int64, req *dto.CreatePaymentRequest, clientIP string) (*dto.CreatePaymentResponse, error) {
	kind := payment.Kind(req.Intent)
	if !kind.Valid() {
		return nil, payment.ErrUnknownIntent
	}

	membership, err := s.membershipRepo.GetByID(req.MembershipID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMembershipNotFound
		}
		return nil, err
	}
	if !membership.IsActive {
		return nil, ErrMembershipNotFound
	}

	_, active, err := s.subService.Snapshot(userID)
	if err != nil {
		return nil, err
	}

	txnRef := strings.ReplaceAll(uuid.NewString(), "-", "")
	var in payment.Intent
	switch kind {
	case payment.KindRegister:
		if active != nil {
			return nil, ErrAlreadySubscribed
		}
		in = payment.Register(txnRef)
	case payment.KindRenew:
		if req.SubscriptionID == nil {
			return nil, payment.ErrRenewSubscriptionID
		}
		if active == nil || active.ID != *req.SubscriptionID {
			return nil, ErrSubscriptionNotRenewable
		}
		in = payment.Renew(txnRef, active.ID)
	}

	now := s.now()
	expiresAt := now.Add(s.orderTTL)
	paymentURL := s.gateway.BuildURL(payment.Order{
		TxnRef:    txnRef,
		Amount:    membership.Price,
		Info:      fmt.Sprintf("Thanh toan goi %s %s", membership.Name, txnRef),
		ClientIP:  clientIP,
		CreatedAt: now,
		ExpiresAt: expiresAt,
	})

	order := &model.PaymentOrder{
		TxnRef:         txnRef,
		UserID:         userID,
		MembershipID:   membership.ID,
		SubscriptionID: in.SubscriptionID,
		Intent:         string(kind),
		Amount:         membership.Price,
		Status:         model.OrderPending,
		PaymentURL:     paymentURL,
	}
	if err := s.orderRepo.Create(order); err != nil {
		return nil, err
	}
	if err := s.intents.Save(ctx, in, s.orderTTL); err != nil {
		return nil, err
	}

	log.Info().Int64("user_id", userID).Str("txn_ref", txnRef).Str("intent", string(kind)).
		Int64("amount", membership.Price).Msg("payment order created")

	return &dto.CreatePaymentResponse{
		TxnRef:     txnRef,
		PaymentURL: paymentURL,
		Amount:     membership.Price,
		ExpiresAt:  expiresAt,
	}, nil
}

// QRCode 待支付订单的二维码
func (s *PaymentService) QRCode(userID int64, txnRef string) ([]byte, error) {
	order, err := s.ownedOrder(userID, txnRef)
	if err != nil {
		return nil, err
	}
	if order.Status != model.OrderPending {
		return nil, ErrOrderNotPending
	}
	return qr.PNG(order.PaymentURL, qr.DefaultSize)
}

// HandleReturn 处理网关回跳，按保存的意图分发到开通或续费
func (s *PaymentService) HandleReturn(ctx context.Context, params url.Values) (*dto.PaymentResult, error) {
	ret, err := s.gateway.Verify(params)
	if err != nil {
		return nil, err
	}
	order, err := s.orderByTxnRef(ret.TxnRef)
	if err != nil {
		return nil, err
	}
	return s.process(ctx, ret, order, "")
}

// Confirm 前端回传的开通结果
func (s *PaymentService) Confirm(ctx context.Context, userID int64, params url.Values) (*dto.PaymentResult, error) {
	return s.processOwned(ctx, userID, params, payment.KindRegister)
}

// Extend 前端回传的续费结果
func (s *PaymentService) Extend(ctx context.Context, userID int64, params url.Values) (*dto.PaymentResult, error) {
	return s.processOwned(ctx, userID, params, payment.KindRenew)
}

func (s *PaymentService) processOwned(ctx context.Context, userID int64, params url.Values, kind payment.Kind) (*dto.PaymentResult, error) {
	ret, err := s.gateway.Verify(params)
	if err != nil {
		return nil, err
	}
	order, err := s.ownedOrder(userID, ret.TxnRef)
	if err != nil {
		return nil, err
	}
	return s.process(ctx, ret, order, kind)
}

// process 先原子取出意图，再根据返回码处理；意图只能被消费一次
func (s *PaymentService) process(ctx context.Context, ret *payment.Return, order *model.PaymentOrder, want payment.Kind) (*dto.PaymentResult, error) {
	if want != "" && payment.Kind(order.Intent) != want {
		return nil, ErrIntentMismatch
	}

	in, err := s.intents.Take(ctx, ret.TxnRef)
	if err != nil {
		if !errors.Is(err, intent.ErrNotFound) {
			return nil, err
		}
		// 重复回跳：已处理的订单直接返回结果
		return s.replay(order)
	}
	if string(in.Kind) != order.Intent {
		s.restoreIntent(ctx, in)
		return nil, ErrIntentMismatch
	}

	if !ret.Succeeded() {
		if _, err := s.orderRepo.MarkFailed(ret.TxnRef, ret.ResponseCode); err != nil {
			return nil, err
		}
		metrics.PaymentsTotal.WithLabelValues(order.Intent, "failed").Inc()
		log.Info().Str("txn_ref", ret.TxnRef).Str("code", ret.ResponseCode).Msg("payment not completed")
		return &dto.PaymentResult{
			TxnRef:       ret.TxnRef,
			ResponseCode: ret.ResponseCode,
			Message:      ret.Message(),
		}, nil
	}

	if ret.Amount != order.Amount {
		if _, err := s.orderRepo.MarkFailed(ret.TxnRef, ret.ResponseCode); err != nil {
			return nil, err
		}
		metrics.PaymentsTotal.WithLabelValues(order.Intent, "failed").Inc()
		log.Warn().Str("txn_ref", ret.TxnRef).Int64("paid", ret.Amount).Int64("expected", order.Amount).Msg("payment amount mismatch")
		return nil, ErrAmountMismatch
	}

	sub, err := s.settle(ret, order, in)
	if err != nil {
		// 事务失败时放回意图，允许重试
		s.restoreIntent(ctx, in)
		return nil, err
	}
	if sub == nil {
		return s.replay(order)
	}

	s.subService.Invalidate(ctx, order.UserID)
	metrics.PaymentsTotal.WithLabelValues(order.Intent, "paid").Inc()
	s.notifyReceipt(ctx, order, sub)

	log.Info().Str("txn_ref", ret.TxnRef).Int64("user_id", order.UserID).
		Int64("subscription_id", sub.ID).Str("intent", order.Intent).Msg("payment settled")

	return &dto.PaymentResult{
		TxnRef:       ret.TxnRef,
		Success:      true,
		ResponseCode: ret.ResponseCode,
		Message:      ret.Message(),
		Subscription: toSubscriptionInfo(sub),
	}, nil
}

// settle 在同一事务中将订单置为已支付并开通或延长订阅；订单已处理时返回 nil
func (s *PaymentService) settle(ret *payment.Return, order *model.PaymentOrder, in payment.Intent) (*model.Subscription, error) {
	membership, err := s.membershipRepo.GetByID(order.MembershipID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var result *model.Subscription
	err = s.db.Transaction(func(tx *gorm.DB) error {
		orders := s.orderRepo.WithTx(tx)
		subs := s.subRepo.WithTx(tx)

		ok, err := orders.MarkPaid(ret.TxnRef, map[string]interface{}{
			"response_code":  ret.ResponseCode,
			"bank_code":      ret.BankCode,
			"transaction_no": ret.TransactionNo,
			"paid_at":        now,
		})
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		switch in.Kind {
		case payment.KindRegister:
			sub := &model.Subscription{
				UserID:       order.UserID,
				MembershipID: membership.ID,
				StartDate:    now,
				EndDate:      now.AddDate(0, 0, membership.DurationDays),
				Status:       model.SubscriptionActive,
			}
			if err := subs.Create(sub); err != nil {
				return err
			}
			if err := orders.SetSubscription(ret.TxnRef, sub.ID); err != nil {
				return err
			}
			result = sub
		case payment.KindRenew:
			sub, err := subs.GetByID(*in.SubscriptionID)
			if err != nil {
				return err
			}
			if sub.UserID != order.UserID {
				return ErrSubscriptionNotRenewable
			}
			sub.EndDate = subscription.Extend(sub.EndDate, now, membership.DurationDays)
			sub.Status = model.SubscriptionActive
			if err := subs.UpdateEndDate(sub.ID, sub.EndDate); err != nil {
				return err
			}
			result = sub
		default:
			return payment.ErrUnknownIntent
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if result != nil {
		result.Membership = membership
	}
	return result, nil
}

// replay 订单已被处理过时按当前状态返回
func (s *PaymentService) restoreIntent(ctx context.Context, in payment.Intent) {
	if err := s.intents.Save(ctx, in, s.orderTTL); err != nil {
		log.Error().Err(err).Str("txn_ref", in.TxnRef).Msg("failed to restore payment intent")
	}
}

func (s *PaymentService) replay(order *model.PaymentOrder) (*dto.PaymentResult, error) {
	current, err := s.orderRepo.GetByTxnRef(order.TxnRef)
	if err != nil {
		return nil, err
	}

	switch current.Status {
	case model.OrderPaid:
		result := &dto.PaymentResult{
			TxnRef:       current.TxnRef,
			Success:      true,
			ResponseCode: current.ResponseCode,
			Message:      payment.Return{ResponseCode: payment.CodeSuccess}.Message(),
		}
		if current.SubscriptionID != nil {
			if sub, err := s.subRepo.GetByID(*current.SubscriptionID); err == nil {
				result.Subscription = toSubscriptionInfo(sub)
			}
		}
		return result, nil
	case model.OrderFailed:
		return &dto.PaymentResult{
			TxnRef:       current.TxnRef,
			ResponseCode: current.ResponseCode,
			Message:      payment.MessageFor(current.ResponseCode),
		}, nil
	default:
		return nil, ErrIntentExpired
	}
}

func (s *PaymentService) notifyReceipt(ctx context.Context, order *model.PaymentOrder, sub *model.Subscription) {
	if s.notifications == nil {
		return
	}
	msg := &queue.Notification{
		Kind:           queue.KindPaymentReceipt,
		UserID:         order.UserID,
		SubscriptionID: sub.ID,
		Amount:         order.Amount,
		EndDate:        sub.EndDate,
	}
	if sub.Membership != nil {
		msg.MembershipName = sub.Membership.Name
	}
	if err := s.notifications.Push(ctx, msg); err != nil {
		log.Warn().Err(err).Str("txn_ref", order.TxnRef).Msg("failed to enqueue payment receipt")
	}
}

func (s *PaymentService) orderByTxnRef(txnRef string) (*model.PaymentOrder, error) {
	order, err := s.orderRepo.GetByTxnRef(txnRef)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

func (s *PaymentService) ownedOrder(userID int64, txnRef string) (*model.PaymentOrder, error) {
	order, err := s.orderByTxnRef(txnRef)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, ErrOrderNotFound
	}
	return order, nil
}
