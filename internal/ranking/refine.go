package ranking

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// RefineText 清洗并截断节正文用于展示
// 连续空白压缩为单个空格，剔除控制字符，超长时在词边界截断
func RefineText(body string, maxLength int) string {
	cleaned := normalizeWhitespace(body)

	if maxLength <= 0 || len(cleaned) <= maxLength {
		return cleaned
	}

	// 回退到最近的词边界，避免截断单词
	cut := maxLength
	for cut > 0 && cleaned[cut] != ' ' {
		cut--
	}
	if cut == 0 {
		// 没有可用的词边界，硬截断，但不能截到多字节字符中间
		cut = maxLength
		for cut > 0 && !utf8.RuneStart(cleaned[cut]) {
			cut--
		}
	}

	return strings.TrimSpace(cleaned[:cut])
}

// normalizeWhitespace 压缩空白并剔除控制字符
func normalizeWhitespace(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	space := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			space = true
			continue
		}
		if unicode.IsControl(r) {
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteRune(r)
	}

	return b.String()
}
