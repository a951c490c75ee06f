package document

import (
	"regexp"
	"strings"
	"unicode"
)

// HeadingRule 标题行判定规则
// 每条规则独立判断一行文本是否是节标题，规则之间按优先级排列
type HeadingRule interface {
	// Name 返回规则名称
	Name() string

	// Match 判断一行文本是否命中该规则
	Match(line string) bool
}

// HeadingClassifier 标题分类器
// 按优先级顺序组合多条规则：显式编号 > 大小写模式 > 冒号短行 > 项目符号
type HeadingClassifier struct {
	maxHeadingLength int           // 标题行最大字符数，超过视为正文误判
	rules            []HeadingRule // 按优先级排列的规则列表
}

// NewHeadingClassifier 创建标题分类器
// maxHeadingWords同时约束冒号结尾、项目符号和首字母大写三类候选
func NewHeadingClassifier(maxHeadingLength, maxHeadingWords int, extra ...HeadingRule) *HeadingClassifier {
	rules := []HeadingRule{
		NumberedHeadingRule{},
		AllCapsHeadingRule{},
		TitleCaseHeadingRule{MaxWords: maxHeadingWords},
		ColonHeadingRule{MaxWords: maxHeadingWords},
		BulletHeadingRule{MaxWords: maxHeadingWords},
	}
	rules = append(rules, extra...)

	return &HeadingClassifier{
		maxHeadingLength: maxHeadingLength,
		rules:            rules,
	}
}

// IsHeading 判断一行文本是否是标题
// 返回命中的规则名称，未命中返回空字符串
func (c *HeadingClassifier) IsHeading(line string) (string, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", false
	}

	// 过长的行更可能是正文
	if len(line) >= c.maxHeadingLength {
		return "", false
	}

	for _, rule := range c.rules {
		if rule.Match(line) {
			return rule.Name(), true
		}
	}
	return "", false
}

var (
	numberedPattern  = regexp.MustCompile(`^\d+(\.\d+)*[\.\)]?\s+\S`)
	chapterPattern   = regexp.MustCompile(`(?i)^(chapter|section|part|appendix)\s+[\dIVXivx]+\b`)
	titleCasePattern = regexp.MustCompile(`^[A-Z][^.!?]*[^.!?]$`)
	bulletPattern    = regexp.MustCompile(`^[•\-\*]\s*[A-Z]`)
)

// NumberedHeadingRule 编号标题规则
// 匹配"1. xxx"、"2.3 xxx"、"Chapter 5"等显式编号形式
type NumberedHeadingRule struct{}

// Name 返回规则名称
func (NumberedHeadingRule) Name() string { return "numbered" }

// Match 判断是否命中编号标题
func (NumberedHeadingRule) Match(line string) bool {
	return numberedPattern.MatchString(line) || chapterPattern.MatchString(line)
}

// AllCapsHeadingRule 全大写标题规则
// 匹配"INTRODUCTION"这类全大写字母行
type AllCapsHeadingRule struct{}

// Name 返回规则名称
func (AllCapsHeadingRule) Name() string { return "allcaps" }

// Match 判断是否命中全大写标题
func (AllCapsHeadingRule) Match(line string) bool {
	if len(line) <= 3 {
		return false
	}

	hasLetter := false
	for _, r := range line {
		if unicode.IsLetter(r) {
			hasLetter = true
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return hasLetter
}

// TitleCaseHeadingRule 首字母大写标题规则
// 匹配大写字母开头、不含句末标点且词数有限的行
type TitleCaseHeadingRule struct {
	MaxWords int // 标题最大词数
}

// Name 返回规则名称
func (TitleCaseHeadingRule) Name() string { return "titlecase" }

// Match 判断是否命中首字母大写标题
func (r TitleCaseHeadingRule) Match(line string) bool {
	if !titleCasePattern.MatchString(line) {
		return false
	}
	return len(strings.Fields(line)) <= r.MaxWords
}

// ColonHeadingRule 冒号结尾标题规则
// 匹配"Options:"这类冒号结尾的短行
type ColonHeadingRule struct {
	MaxWords int // 标题最大词数
}

// Name 返回规则名称
func (ColonHeadingRule) Name() string { return "colon" }

// Match 判断是否命中冒号结尾标题
func (r ColonHeadingRule) Match(line string) bool {
	if !strings.HasSuffix(line, ":") {
		return false
	}
	return len(strings.Fields(line)) <= r.MaxWords
}

// BulletHeadingRule 项目符号标题规则
// 匹配"• Tips"这类项目符号开头、大写字母紧随的短行
type BulletHeadingRule struct {
	MaxWords int // 标题最大词数
}

// Name 返回规则名称
func (BulletHeadingRule) Name() string { return "bullet" }

// Match 判断是否命中项目符号标题
func (r BulletHeadingRule) Match(line string) bool {
	if !bulletPattern.MatchString(line) {
		return false
	}
	return len(strings.Fields(line)) <= r.MaxWords
}
