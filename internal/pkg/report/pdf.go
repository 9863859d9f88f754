// Package report renders the member progress report as PDF.
package report

import (
	"bytes"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/go-pdf/fpdf"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/breathfree/quit_go_server/internal/domain/progress"
)

var (
	colorPrimary   = [3]int{22, 101, 52}
	colorTextDark  = [3]int{44, 62, 80}
	colorTextMuted = [3]int{127, 140, 141}
	colorTableAlt  = [3]int{240, 253, 244}
)

// Stage 报告中的阶段摘要
type Stage struct {
	Title    string
	Days     int
	Status   string
	Progress int
}

// Data 报告数据
type Data struct {
	MemberName        string
	GeneratedAt       time.Time
	CigarettesPerDay  float64
	PricePerCigarette float64
	PlanReason        string
	PlanStart         *time.Time
	ExpectedQuitDate  *time.Time
	Stages            []Stage
	Stats             progress.Statistics
	Chart             []progress.ChartPoint
}

// Generate renders data into a PDF document.
func Generate(data *Data) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	writeHeader(pdf, data)
	writeBaseline(pdf, data)
	writeStatistics(pdf, data)
	if len(data.Stages) > 0 {
		writePlan(pdf, data)
	}
	if len(data.Chart) > 0 {
		writeRecentDays(pdf, data)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("PDF output error: %w", err)
	}
	return buf.Bytes(), nil
}

func writeHeader(pdf *fpdf.Fpdf, data *Data) {
	pageWidth, _ := pdf.GetPageSize()
	pdf.SetFillColor(colorPrimary[0], colorPrimary[1], colorPrimary[2])
	pdf.Rect(0, 0, pageWidth, 6, "F")

	pdf.SetFont("Arial", "B", 22)
	pdf.SetTextColor(colorPrimary[0], colorPrimary[1], colorPrimary[2])
	pdf.CellFormat(0, 12, ascii("Báo cáo tiến độ cai thuốc"), "", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "", 11)
	pdf.SetTextColor(colorTextMuted[0], colorTextMuted[1], colorTextMuted[2])
	pdf.CellFormat(0, 6, ascii(fmt.Sprintf("Thành viên: %s", data.MemberName)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Ngay tao: "+data.GeneratedAt.Format("02/01/2006 15:04"), "", 1, "L", false, 0, "")
	pdf.Ln(4)
}

func writeBaseline(pdf *fpdf.Fpdf, data *Data) {
	sectionTitle(pdf, "Tình trạng hút thuốc ban đầu")
	daily := progress.DailyCost(progress.Baseline{
		CigarettesPerDay:  data.CigarettesPerDay,
		PricePerCigarette: data.PricePerCigarette,
	})
	row(pdf, "Số điếu mỗi ngày", fmt.Sprintf("%.0f", data.CigarettesPerDay), false)
	row(pdf, "Giá mỗi điếu", vnd(data.PricePerCigarette), true)
	row(pdf, "Chi phí mỗi ngày", vnd(daily), false)
	pdf.Ln(4)
}

func writeStatistics(pdf *fpdf.Fpdf, data *Data) {
	s := data.Stats
	sectionTitle(pdf, "Thống kê")
	row(pdf, "Số ngày đã ghi nhận", fmt.Sprintf("%d", s.DaysLogged), false)
	row(pdf, "Số ngày không hút", fmt.Sprintf("%d", s.SmokeFreeDays), true)
	row(pdf, "Chuỗi hiện tại", fmt.Sprintf("%d ngày", s.CurrentStreak), false)
	row(pdf, "Chuỗi dài nhất", fmt.Sprintf("%d ngày", s.LongestStreak), true)
	row(pdf, "Trung bình mỗi ngày", fmt.Sprintf("%.2f điếu", s.AverageCigarettes), false)
	row(pdf, "Số điếu đã tránh", fmt.Sprintf("%.0f", s.CigarettesAvoided), true)
	row(pdf, "Tiền tiết kiệm", vnd(s.MoneySaved), false)
	pdf.Ln(4)
}

func writePlan(pdf *fpdf.Fpdf, data *Data) {
	sectionTitle(pdf, "Kế hoạch hiện tại")
	if data.PlanReason != "" {
		pdf.SetFont("Arial", "I", 10)
		pdf.SetTextColor(colorTextDark[0], colorTextDark[1], colorTextDark[2])
		pdf.MultiCell(0, 5, ascii(data.PlanReason), "", "L", false)
	}
	if data.PlanStart != nil && data.ExpectedQuitDate != nil {
		row(pdf, "Thời gian", data.PlanStart.Format("02/01/2006")+" - "+data.ExpectedQuitDate.Format("02/01/2006"), false)
	}

	widths := []float64{90, 25, 30, 25}
	header := []string{"Giai đoạn", "Số ngày", "Trạng thái", "Tiến độ"}
	tableHeader(pdf, widths, header)
	for i, st := range data.Stages {
		cells := []string{st.Title, fmt.Sprintf("%d", st.Days), stageLabel(st.Status), fmt.Sprintf("%d%%", st.Progress)}
		tableRow(pdf, widths, cells, i%2 == 1)
	}
	pdf.Ln(4)
}

func writeRecentDays(pdf *fpdf.Fpdf, data *Data) {
	sectionTitle(pdf, "Các ngày gần đây")
	widths := []float64{40, 40, 50}
	tableHeader(pdf, widths, []string{"Ngày", "Số điếu", "Tâm trạng"})
	for i, p := range data.Chart {
		cigs := "-"
		if p.Cigarettes != nil {
			cigs = fmt.Sprintf("%d", *p.Cigarettes)
		}
		tableRow(pdf, widths, []string{p.Date, cigs, p.Mood}, i%2 == 1)
	}
}

func sectionTitle(pdf *fpdf.Fpdf, title string) {
	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(colorTextDark[0], colorTextDark[1], colorTextDark[2])
	pdf.CellFormat(0, 9, ascii(title), "B", 1, "L", false, 0, "")
	pdf.Ln(2)
}

func row(pdf *fpdf.Fpdf, label, value string, alt bool) {
	if alt {
		pdf.SetFillColor(colorTableAlt[0], colorTableAlt[1], colorTableAlt[2])
	}
	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(colorTextDark[0], colorTextDark[1], colorTextDark[2])
	pdf.CellFormat(70, 7, ascii(label), "", 0, "L", alt, 0, "")
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(0, 7, ascii(value), "", 1, "L", alt, 0, "")
}

func tableHeader(pdf *fpdf.Fpdf, widths []float64, cells []string) {
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(colorPrimary[0], colorPrimary[1], colorPrimary[2])
	pdf.SetTextColor(255, 255, 255)
	for i, c := range cells {
		pdf.CellFormat(widths[i], 7, ascii(c), "", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)
}

func tableRow(pdf *fpdf.Fpdf, widths []float64, cells []string, alt bool) {
	pdf.SetFont("Arial", "", 9)
	pdf.SetTextColor(colorTextDark[0], colorTextDark[1], colorTextDark[2])
	pdf.SetFillColor(colorTableAlt[0], colorTableAlt[1], colorTableAlt[2])
	for i, c := range cells {
		pdf.CellFormat(widths[i], 6, ascii(truncate(c, 48)), "", 0, "L", alt, 0, "")
	}
	pdf.Ln(-1)
}

func stageLabel(status string) string {
	switch status {
	case "completed":
		return "Hoàn thành"
	case "in_progress":
		return "Đang thực hiện"
	default:
		return "Sắp tới"
	}
}

func vnd(v float64) string {
	s := fmt.Sprintf("%.0f", v)
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 && s[i-1] != '-' {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	return b.String() + " VND"
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// 内置字体只有 cp1252，去掉越南语声调
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func ascii(s string) string {
	s = strings.NewReplacer("đ", "d", "Đ", "D").Replace(s)
	out, _, err := transform.String(stripMarks, s)
	if err != nil {
		return s
	}
	return out
}
