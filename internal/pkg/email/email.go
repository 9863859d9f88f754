package email

import (
	"fmt"
	"net/smtp"
	"sort"
	"strings"
	"time"

	"github.com/breathfree/quit_go_server/config"
)

type Service struct {
	cfg *config.EmailConfig
}

func NewService(cfg *config.EmailConfig) *Service {
	return &Service{cfg: cfg}
}

const layout = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        %s
        <hr style="border: none; border-top: 1px solid #e5e7eb; margin: 20px 0;">
        <p style="color: #6b7280; font-size: 12px;">Email này được gửi tự động, vui lòng không trả lời.</p>
    </div>
</body>
</html>
`

// SendExpiryReminder 会员即将到期提醒
func (s *Service) SendExpiryReminder(to, username, membership string, daysRemaining int, endDate time.Time) error {
	subject, body := ExpiryReminder(username, membership, daysRemaining, endDate)
	return s.sendHTML(to, subject, body)
}

// SendPaymentReceipt 支付成功回执
func (s *Service) SendPaymentReceipt(to, username, membership string, amount int64, endDate time.Time) error {
	subject, body := PaymentReceipt(username, membership, amount, endDate)
	return s.sendHTML(to, subject, body)
}

// SendWelcome 发送欢迎邮件
func (s *Service) SendWelcome(to, username string) error {
	subject, body := Welcome(username)
	return s.sendHTML(to, subject, body)
}

// ExpiryReminder renders the expiry reminder.
func ExpiryReminder(username, membership string, daysRemaining int, endDate time.Time) (string, string) {
	subject := "Gói thành viên sắp hết hạn"
	body := fmt.Sprintf(`
        <h2 style="color: #166534;">Gói thành viên sắp hết hạn</h2>
        <p>Xin chào %s,</p>
        <p>Gói <strong>%s</strong> của bạn sẽ hết hạn sau <strong>%d ngày</strong> (ngày %s).</p>
        <p>Gia hạn ngay để tiếp tục theo dõi kế hoạch cai thuốc và trò chuyện với huấn luyện viên.</p>
`, username, membership, daysRemaining, endDate.Format("02/01/2006"))
	return subject, fmt.Sprintf(layout, body)
}

// PaymentReceipt renders the payment receipt.
func PaymentReceipt(username, membership string, amount int64, endDate time.Time) (string, string) {
	subject := "Thanh toán thành công"
	body := fmt.Sprintf(`
        <h2 style="color: #166534;">Thanh toán thành công</h2>
        <p>Xin chào %s,</p>
        <p>Bạn đã thanh toán <strong>%d VND</strong> cho gói <strong>%s</strong>.</p>
        <p>Gói thành viên có hiệu lực đến ngày %s.</p>
`, username, amount, membership, endDate.Format("02/01/2006"))
	return subject, fmt.Sprintf(layout, body)
}

// Welcome renders the welcome mail.
func Welcome(username string) (string, string) {
	subject := "Chào mừng bạn đến với hành trình cai thuốc"
	body := fmt.Sprintf(`
        <h2 style="color: #166534;">Chào mừng!</h2>
        <p>Xin chào %s!</p>
        <p>Cảm ơn bạn đã đăng ký. Bây giờ bạn có thể:</p>
        <ul>
            <li>Khai báo tình trạng hút thuốc</li>
            <li>Lập kế hoạch cai thuốc theo từng giai đoạn</li>
            <li>Ghi nhật ký và theo dõi số tiền tiết kiệm</li>
        </ul>
`, username)
	return subject, fmt.Sprintf(layout, body)
}

// sendHTML 发送 HTML 邮件
func (s *Service) sendHTML(to, subject, body string) error {
	msg := buildMessage(s.cfg.From, to, subject, body)

	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.SMTPHost)
	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)

	return smtp.SendMail(addr, auth, s.cfg.From, []string{to}, msg)
}

func buildMessage(from, to, subject, body string) []byte {
	headers := map[string]string{
		"From":         from,
		"To":           to,
		"Subject":      subject,
		"MIME-Version": "1.0",
		"Content-Type": "text/html; charset=UTF-8",
	}

	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var msg strings.Builder
	for _, k := range keys {
		msg.WriteString(fmt.Sprintf("%s: %s\r\n", k, headers[k]))
	}
	msg.WriteString("\r\n")
	msg.WriteString(body)
	return []byte(msg.String())
}
