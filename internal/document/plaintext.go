package document

import (
	"fmt"
	"os"
	"strings"
)

// PlainTextParser 纯文本解析器
type PlainTextParser struct{}

// NewPlainTextParser 创建一个新的纯文本解析器
func NewPlainTextParser() Parser {
	return &PlainTextParser{}
}

// ParsePages 解析纯文本文件
// 按换页符(\f)切分页面，没有换页符时整个文件作为第1页
func (p *PlainTextParser) ParsePages(filePath string) ([]PageText, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read text file: %v", err)
	}

	return splitFormFeedPages(string(content)), nil
}

// splitFormFeedPages 按换页符切分文本为页
func splitFormFeedPages(text string) []PageText {
	parts := strings.Split(text, "\f")

	pages := make([]PageText, 0, len(parts))
	for i, part := range parts {
		pages = append(pages, PageText{
			PageNumber: i + 1,
			Text:       strings.TrimSpace(part),
		})
	}

	return pages
}
