package util

import "time"

// DateOnly 截断到所在时区的零点，连续打卡按自然日比较
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// IsNextDay b 是否为 a 的下一个自然日
func IsNextDay(a, b time.Time) bool {
	return DateOnly(a).AddDate(0, 0, 1).Equal(DateOnly(b))
}

// SameDay a 与 b 是否为同一自然日
func SameDay(a, b time.Time) bool {
	return DateOnly(a).Equal(DateOnly(b))
}
