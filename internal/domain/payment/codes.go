// Package payment holds the gateway response-code table, redirect signing and
// the payment intent carried across the gateway redirect.
package payment

// CodeSuccess is the only gateway response code treated as paid.
const CodeSuccess = "00"

// DefaultFailureMessage is shown for codes missing from the table.
const DefaultFailureMessage = "Thanh toán thất bại. Vui lòng thử lại."

var responseMessages = map[string]string{
	"07": "Trừ tiền thành công. Giao dịch bị nghi ngờ (liên quan tới lừa đảo, giao dịch bất thường).",
	"09": "Thẻ/Tài khoản của khách hàng chưa đăng ký dịch vụ InternetBanking tại ngân hàng.",
	"10": "Khách hàng xác thực thông tin thẻ/tài khoản không đúng quá 3 lần.",
	"11": "Đã hết hạn chờ thanh toán. Xin quý khách vui lòng thực hiện lại giao dịch.",
	"12": "Thẻ/Tài khoản của khách hàng bị khóa.",
	"13": "Quý khách nhập sai mật khẩu xác thực giao dịch (OTP).",
	"24": "Bạn đã hủy giao dịch.",
	"51": "Tài khoản của quý khách không đủ số dư để thực hiện giao dịch.",
	"65": "Tài khoản của quý khách đã vượt quá hạn mức giao dịch trong ngày.",
	"75": "Ngân hàng thanh toán đang bảo trì.",
	"79": "Quý khách nhập sai mật khẩu thanh toán quá số lần quy định.",
	"99": "Lỗi không xác định.",
}

// MessageFor maps a non-success response code to its user-facing message.
func MessageFor(code string) string {
	if msg, ok := responseMessages[code]; ok {
		return msg
	}
	return DefaultFailureMessage
}

// Succeeded reports whether code means the payment went through.
func Succeeded(code string) bool {
	return code == CodeSuccess
}
