package utils

import (
	"fmt"
	"time"
)

var clockLayouts = []string{"15:04:05", "15:04"}

// ParseClockMinutes 把钟点字符串解析为从零点起算的分钟数
// 兼容 15:04:05 和 15:04 两种格式
func ParseClockMinutes(clock string) (int, error) {
	for _, layout := range clockLayouts {
		t, err := time.Parse(layout, clock)
		if err == nil {
			return t.Hour()*60 + t.Minute(), nil
		}
	}
	return 0, fmt.Errorf("无法解析钟点 %q", clock)
}

// FormatClockMinutes 把分钟数格式化为 15:04 形式的钟点
func FormatClockMinutes(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ValidateInterval 检查一个时间段的起止钟点是否合法
func ValidateInterval(startTime string, endTime string) error {
	start, err := ParseClockMinutes(startTime)
	if err != nil {
		return fmt.Errorf("开始时间格式错误: %w", err)
	}
	end, err := ParseClockMinutes(endTime)
	if err != nil {
		return fmt.Errorf("结束时间格式错误: %w", err)
	}
	if end < start {
		return fmt.Errorf("结束时间不能小于开始时间")
	}
	return nil
}
