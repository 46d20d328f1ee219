package bot

import (
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"QuoteDesk/internal/notifier"
	"QuoteDesk/internal/period"
	"QuoteDesk/internal/picker"
	"QuoteDesk/internal/recorder"
)

const dateLayout = "2006-01-02"

// Handler turns chat commands into picker form events.
type Handler struct {
	Sessions *picker.Sessions
	Recorder recorder.Recorder
	Location *time.Location // zone used to parse dates
}

// NewHandler creates a Handler. A nil location defaults to time.Local.
func NewHandler(sessions *picker.Sessions, rec recorder.Recorder, loc *time.Location) *Handler {
	if loc == nil {
		loc = time.Local
	}
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Handler{Sessions: sessions, Recorder: rec, Location: loc}
}

// HandleCommand processes one message from chatID and returns the reply.
func (h *Handler) HandleCommand(chatID int64, text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	cmd := strings.ToLower(fields[0])
	if i := strings.IndexByte(cmd, '@'); i > 0 {
		cmd = cmd[:i] // /quote@MyBot
	}
	args := fields[1:]

	switch cmd {
	case "/symbol":
		if len(args) != 1 {
			return "用法: /symbol AAPL"
		}
		form := h.Sessions.Get(chatID)
		form.SetSymbol(args[0])
		return notifier.FormatFormState(form.Snapshot())

	case "/period":
		if len(args) != 1 {
			return "用法: /period 1y\n\n" + notifier.FormatPeriods()
		}
		sel, err := period.ParseSelection(args[0])
		if err != nil {
			return fmt.Sprintf("未知周期 %q\n\n%s", html.EscapeString(args[0]), notifier.FormatPeriods())
		}
		form := h.Sessions.Get(chatID)
		form.SelectPeriodOption(sel)
		reply := notifier.FormatFormState(form.Snapshot())
		if sel == period.Custom {
			reply += "\n请用 /from 与 /to 设置日期 (YYYY-MM-DD)"
		}
		return reply

	case "/from", "/to":
		if len(args) != 1 {
			return fmt.Sprintf("用法: %s 2024-01-02", cmd)
		}
		d, err := time.ParseInLocation(dateLayout, args[0], h.Location)
		if err != nil {
			return fmt.Sprintf("日期格式错误 %q，应为 YYYY-MM-DD", html.EscapeString(args[0]))
		}
		form := h.Sessions.Get(chatID)
		if !form.Snapshot().ShowDatePicker {
			return "请先选择 /period Custom"
		}
		if cmd == "/from" {
			form.SetFromDate(d)
		} else {
			form.SetToDate(d)
		}
		return notifier.FormatFormState(form.Snapshot())

	case "/submit":
		return h.submit(chatID)

	case "/quote":
		if len(args) != 2 {
			return "用法: /quote AAPL 1y"
		}
		sel, err := period.ParseSelection(args[1])
		if err != nil || sel == period.Custom {
			return fmt.Sprintf("未知周期 %q\n\n%s", html.EscapeString(args[1]), notifier.FormatPeriods())
		}
		form := h.Sessions.Get(chatID)
		form.SetSymbol(args[0])
		form.SelectPeriodOption(sel)
		return h.submit(chatID)

	case "/form":
		return notifier.FormatFormState(h.Sessions.Get(chatID).Snapshot())

	case "/periods":
		return notifier.FormatPeriods()

	case "/history":
		events, err := h.Recorder.RecentQueries(strconv.FormatInt(chatID, 10), 10)
		if err != nil {
			zap.S().Errorf("load history for %d: %v", chatID, err)
			return "读取查询记录失败"
		}
		return notifier.FormatHistory(events)

	case "/reset":
		h.Sessions.Reset(chatID)
		return "表单已清空"

	default:
		return notifier.HelpText
	}
}

// submit never reports why a form was incomplete; it only says whether a
// query was sent.
func (h *Handler) submit(chatID int64) string {
	if h.Sessions.Get(chatID).Submit() {
		return "⏳ 查询已提交"
	}
	return "表单未完成，未发送查询 (/form 查看)"
}
