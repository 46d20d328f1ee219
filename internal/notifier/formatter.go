package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"QuoteDesk/internal/calculator"
	"QuoteDesk/internal/model"
	"QuoteDesk/internal/period"
	"QuoteDesk/internal/picker"
	"QuoteDesk/internal/recorder"
)

const dateLayout = "2006-01-02"

// FormatQueryResult formats a completed price query into a Telegram message.
func FormatQueryResult(res model.QueryResult) string {
	q := res.Query
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📈 <b>%s</b> | %s", html.EscapeString(q.Symbol), q.Code))
	if q.HasRange() {
		b.WriteString(fmt.Sprintf(" (%s → %s)", q.From.Format(dateLayout), q.To.Format(dateLayout)))
	}
	b.WriteString("\n\n")

	if res.Err != nil {
		b.WriteString(fmt.Sprintf("❌ 查询失败: %s\n", html.EscapeString(res.Err.Error())))
		return b.String()
	}

	sum, err := calculator.Summarize(res.Bars)
	if err != nil {
		b.WriteString("没有返回数据\n")
		return b.String()
	}

	first, last := res.Bars[0].Time, res.Bars[len(res.Bars)-1].Time
	b.WriteString(fmt.Sprintf("区间: %s ~ %s (%d 根K线)\n", first.Format(dateLayout), last.Format(dateLayout), sum.Bars))
	b.WriteString(fmt.Sprintf("收盘: %.2f → %.2f (%s%%)\n", sum.FirstClose, sum.LastClose, signed(sum.ChangePct.String())))
	b.WriteString(fmt.Sprintf("最高: %.2f | 最低: %.2f\n", sum.High, sum.Low))
	if sum.SMA20 > 0 {
		b.WriteString(fmt.Sprintf("SMA20: %.2f\n", sum.SMA20))
	}
	b.WriteString(fmt.Sprintf("RSI14: %.0f\n", sum.RSI14))

	if res.Cached {
		b.WriteString(fmt.Sprintf("\n<i>%s · 缓存</i>", res.Source))
	} else {
		b.WriteString(fmt.Sprintf("\n<i>%s</i>", res.Source))
	}
	return b.String()
}

func signed(s string) string {
	if strings.HasPrefix(s, "-") {
		return s
	}
	return "+" + s
}

// FormatFormState renders the picker form.
func FormatFormState(s picker.State) string {
	var b strings.Builder
	b.WriteString("📝 <b>查询表单</b>\n\n")
	b.WriteString(fmt.Sprintf("代码: %s\n", orDash(html.EscapeString(s.Symbol))))
	if s.Selection == "" {
		b.WriteString("周期: -\n")
	} else {
		b.WriteString(fmt.Sprintf("周期: %s (%s)\n", s.Selection.Label(), s.Selection))
	}
	if s.ShowDatePicker {
		b.WriteString(fmt.Sprintf("开始: %s\n", formatDate(s.From)))
		b.WriteString(fmt.Sprintf("结束: %s\n", formatDate(s.To)))
	}
	return b.String()
}

// FormatPeriods lists the available period options.
func FormatPeriods() string {
	var b strings.Builder
	b.WriteString("🗓 <b>可选周期</b>\n\n")
	for _, o := range period.Options {
		b.WriteString(fmt.Sprintf("• <code>%s</code> %s\n", o.Value, o.Label))
	}
	return b.String()
}

// FormatHistory renders recent queries, newest first.
func FormatHistory(events []recorder.QueryEvent) string {
	if len(events) == 0 {
		return "暂无查询记录"
	}
	var b strings.Builder
	b.WriteString("🕘 <b>最近查询</b>\n\n")
	for _, e := range events {
		status := fmt.Sprintf("%.2f", e.LastClose)
		if e.Error != "" {
			status = "失败"
		}
		b.WriteString(fmt.Sprintf("%s  %s %s  %s\n",
			e.Timestamp.Format("01-02 15:04"), html.EscapeString(e.Symbol), e.Code, status))
	}
	return b.String()
}

// HelpText lists the supported commands.
const HelpText = `可用命令:
• /symbol AAPL  设置股票代码
• /period 1y  选择周期 (/periods 查看全部)
• /from 2024-01-02  自定义开始日期
• /to 2024-03-01  自定义结束日期
• /submit  提交查询
• /quote AAPL 1y  一步查询
• /form  查看当前表单
• /history  最近查询
• /reset  清空表单`

func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(dateLayout)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
