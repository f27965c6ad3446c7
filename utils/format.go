package utils

import "strconv"

// FormatID 将 int64 ID 格式化为十进制字符串
func FormatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// ParseID 解析十进制字符串 ID
func ParseID(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}
