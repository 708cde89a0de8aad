package binding

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var exprPattern = regexp.MustCompile(`\$\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}`)

// Interpolate 将模板中的 ${name} 替换为 data 中的值。
// 若 data 为空或键不存在，则保留原占位符。
func Interpolate(text string, data map[string]any) string {
	if len(data) == 0 {
		return text
	}
	return exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		key := exprPattern.FindStringSubmatch(match)[1]
		if val, ok := data[key]; ok {
			return fmt.Sprint(val)
		}
		return match
	})
}

// Expand 与 Interpolate 相同，但存在未知占位符时返回错误。
func Expand(text string, data map[string]any) (string, error) {
	var missing []string
	for _, groups := range exprPattern.FindAllStringSubmatch(text, -1) {
		if _, ok := data[groups[1]]; !ok {
			missing = append(missing, groups[1])
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return "", fmt.Errorf("模板 %q 引用了未定义的变量: %s", text, strings.Join(missing, ", "))
	}
	return Interpolate(text, data), nil
}

// Placeholders 返回模板中引用的变量名（按出现顺序，去重）。
func Placeholders(text string) []string {
	var out []string
	seen := map[string]bool{}
	for _, groups := range exprPattern.FindAllStringSubmatch(text, -1) {
		if !seen[groups[1]] {
			seen[groups[1]] = true
			out = append(out, groups[1])
		}
	}
	return out
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SafeName 将任意字符串转换为可用作文件名片段的形式。
func SafeName(s string) string {
	s = unsafeName.ReplaceAllString(strings.TrimSpace(s), "-")
	s = strings.Trim(s, "-.")
	if s == "" {
		return "x"
	}
	return s
}
