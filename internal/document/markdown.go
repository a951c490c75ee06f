package document

import (
	"fmt"
	"os"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// MarkdownParser Markdown文档解析器
type MarkdownParser struct{}

// NewMarkdownParser 创建新的Markdown解析器
func NewMarkdownParser() Parser {
	return &MarkdownParser{}
}

// ParsePages 解析Markdown文件并提取文本内容
// Markdown没有分页概念，全部内容作为第1页返回
func (p *MarkdownParser) ParsePages(filePath string) ([]PageText, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read markdown file: %v", err)
	}

	// 创建Markdown解析器
	extensions := parser.CommonExtensions | parser.AutoHeadingIDs
	mdParser := parser.NewWithExtensions(extensions)

	// 解析Markdown内容
	doc := mdParser.Parse(content)

	// 创建HTML渲染器
	htmlFlags := html.CommonFlags
	renderer := html.NewRenderer(html.RendererOptions{Flags: htmlFlags})

	// 将Markdown转换为HTML
	htmlContent := markdown.Render(doc, renderer)

	// 从HTML中提取纯文本
	plainText := extractTextFromHTML(string(htmlContent))

	return []PageText{
		{PageNumber: 1, Text: plainText},
	}, nil
}

// extractTextFromHTML 从HTML中提取纯文本
// 简化实现：标题和段落边界转换为换行，其余标签剔除
func extractTextFromHTML(htmlText string) string {
	replacements := []struct {
		Old string
		New string
	}{
		{"<br>", "\n"},
		{"<br/>", "\n"},
		{"<br />", "\n"},
		{"<p>", ""},
		{"</p>", "\n\n"},
		{"<li>", "- "},
		{"</li>", "\n"},
		{"<ul>", "\n"},
		{"</ul>", "\n"},
		{"<ol>", "\n"},
		{"</ol>", "\n"},
	}

	result := htmlText
	for _, r := range replacements {
		result = strings.ReplaceAll(result, r.Old, r.New)
	}

	// 标题标签转换为独立的行，保留分段结构供后续分节使用
	for level := 1; level <= 6; level++ {
		open := fmt.Sprintf("<h%d", level)
		closing := fmt.Sprintf("</h%d>", level)
		for {
			start := strings.Index(result, open)
			if start == -1 {
				break
			}
			tagEnd := strings.Index(result[start:], ">")
			if tagEnd == -1 {
				break
			}
			result = result[:start] + "\n\n" + result[start+tagEnd+1:]
		}
		result = strings.ReplaceAll(result, closing, "\n\n")
	}

	// 移除剩余的HTML标签
	for {
		start := strings.Index(result, "<")
		if start == -1 {
			break
		}
		end := strings.Index(result[start:], ">")
		if end == -1 {
			break
		}
		result = result[:start] + " " + result[start+end+1:]
	}

	// 规范化每行内部的空白，保留行与空行结构
	lines := strings.Split(result, "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	result = strings.Join(lines, "\n")

	// 压缩连续空行
	for strings.Contains(result, "\n\n\n") {
		result = strings.ReplaceAll(result, "\n\n\n", "\n\n")
	}

	return strings.TrimSpace(result)
}
