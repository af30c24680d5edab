package platformversion

import (
	"os"
	"strings"
)

func trim(s string) string {
	return strings.TrimSpace(strings.Trim(s, "\n"))
}

// readFileString 读取文件并去除首尾空白
func readFileString(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// orUnknown 空字符串替换为 Unknown 哨兵值
func orUnknown(s string) string {
	if s == "" {
		return Unknown
	}
	return s
}
