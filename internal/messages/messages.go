package messages

import (
	"fmt"
	"strings"

	"github.com/BatmanBruc/feedback-bot/types"
)

const ParseModeHTML = "HTML"

func Escape(s string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		"\"", "&quot;",
		"'", "&#39;",
	)
	return replacer.Replace(strings.TrimSpace(s))
}

func Title(text string) string {
	return fmt.Sprintf("📝 <b>%s</b>", Escape(text))
}

var fieldLines = map[types.Field]struct {
	icon  string
	label string
}{
	types.FieldName:       {"👤", "Имя"},
	types.FieldPhone:      {"📱", "Телефон"},
	types.FieldBirthday:   {"🎂", "Дата рождения"},
	types.FieldConsultant: {"👨‍💼", "Консультант"},
	types.FieldRating:     {"⭐", "Оценка"},
	types.FieldCity:       {"🏙️", "Город"},
	types.FieldComment:    {"💬", "Комментарий"},
}

func Line(icon, label, value string) string {
	value = Escape(value)
	if value == "" {
		value = "—"
	}
	return fmt.Sprintf("%s <b>%s:</b> %s", icon, label, value)
}

// OperatorSummary is the HTML message sent to the operator for one record.
// fields decides which answers are listed and in which order.
func OperatorSummary(rec types.Record, fields []types.Field) string {
	lines := make([]string, 0, len(fields)+3)
	lines = append(lines, Title("Новый отзыв"))
	for _, f := range fields {
		fl, ok := fieldLines[f]
		if !ok {
			fl.icon, fl.label = "•", string(f)
		}
		lines = append(lines, Line(fl.icon, fl.label, rec.Answer(f)))
	}
	lines = append(lines,
		Line("🌍", "Язык", string(rec.Language())),
		Line("🕒", "Время", rec.CapturedAt().Format(types.TimestampLayout)),
	)
	return strings.Join(lines, "\n")
}
