package run

import "time"

// WeekLayout weekOf 的日期格式
const WeekLayout = "2006-01-02"

// WeekOf 回傳 t 所在週的星期一（ISO 日期）
func WeekOf(t time.Time) string {
	return MondayOf(t).Format(WeekLayout)
}

// MondayOf 回傳 t 所在週的星期一零時
func MondayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// ParseWeek 解析並正規化為該週星期一
func ParseWeek(s string) (string, error) {
	t, err := time.Parse(WeekLayout, s)
	if err != nil {
		return "", err
	}
	return WeekOf(t), nil
}
