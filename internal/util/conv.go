package util

import (
	"strconv"
)

// ParsePositiveInt 解析正整数查询参数，解析失败或越界时返回默认值
func ParsePositiveInt(s string, def, max int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	if max > 0 && n > max {
		return def
	}
	return n
}
