package validator

import (
	"fmt"
	"regexp"
	"strings"
)

// MaxSectorLength 行业名称最大长度
const MaxSectorLength = 100

// InvalidSectorError 非法行业名称错误，携带原始输入和失败的规则
type InvalidSectorError struct {
	Input string
	Rule  string
}

func (e *InvalidSectorError) Error() string {
	return fmt.Sprintf("invalid sector name %q: %s", e.Input, e.Rule)
}

// sectorPattern 行业名称白名单：小写字母、数字、连字符
var sectorPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// unsafePatterns 注入类输入黑名单，命中即拒绝
var unsafePatterns = []*regexp.Regexp{
	regexp.MustCompile(`<script`),
	regexp.MustCompile(`javascript:`),
	regexp.MustCompile(`on\w+\s*=`),
	regexp.MustCompile(`eval\(`),
	regexp.MustCompile(`exec\(`),
}

// Sanitize 清洗并校验行业名称。
// 仅做去空白和小写化两种归一化，其余非法输入一律拒绝而不修复。
func Sanitize(raw string) (string, error) {
	lowered := strings.ToLower(strings.TrimSpace(raw))

	for _, p := range unsafePatterns {
		if p.MatchString(lowered) {
			return "", &InvalidSectorError{Input: raw, Rule: "potentially unsafe characters detected"}
		}
	}

	if lowered == "" {
		return "", &InvalidSectorError{Input: raw, Rule: "sector name cannot be empty"}
	}
	if len(lowered) > MaxSectorLength {
		return "", &InvalidSectorError{Input: raw, Rule: fmt.Sprintf("sector name too long (max %d characters)", MaxSectorLength)}
	}
	if !sectorPattern.MatchString(lowered) {
		return "", &InvalidSectorError{Input: raw, Rule: "only lowercase letters, digits and hyphens are allowed"}
	}

	return lowered, nil
}
