package document

import (
	"errors"
	"path/filepath"
	"strings"
)

// PageText 单页提取的纯文本
// 由解析器生成，页码从1开始，生成后不再修改
type PageText struct {
	PageNumber int    // 页码（从1开始）
	Text       string // 该页的纯文本内容
}

// Parser 文档解析器接口
// 负责将不同格式的文档解析为按页组织的纯文本
type Parser interface {
	// ParsePages 解析文档，返回按页码升序排列的页文本
	// 空白页（如纯图片页）返回空文本，不视为错误
	ParsePages(filePath string) ([]PageText, error)
}

// ContentType 表示文档的内容类型
type ContentType string

const (
	// PDF 文档类型
	PDF ContentType = "pdf"
	// Markdown 文档类型
	Markdown ContentType = "markdown"
	// PlainText 纯文本类型
	PlainText ContentType = "plaintext"
	// Unknown 未知类型
	Unknown ContentType = "unknown"
)

// ErrUnsupportedType 不支持的文档类型
var ErrUnsupportedType = errors.New("unsupported document type")

// ParserFactory 解析器工厂函数，根据文件类型创建对应的解析器
func ParserFactory(filePath string) (Parser, error) {
	contentType := detectContentType(filePath)

	switch contentType {
	case PDF:
		return NewPDFParser(), nil
	case Markdown:
		return NewMarkdownParser(), nil
	case PlainText:
		return NewPlainTextParser(), nil
	default:
		return nil, ErrUnsupportedType
	}
}

// detectContentType 根据文件扩展名检测内容类型
func detectContentType(filePath string) ContentType {
	ext := strings.ToLower(filepath.Ext(filePath))

	switch ext {
	case ".pdf":
		return PDF
	case ".md", ".markdown":
		return Markdown
	case ".txt":
		return PlainText
	default:
		return Unknown
	}
}

// SupportedExtensions 返回支持的文档扩展名
func SupportedExtensions() []string {
	return []string{".pdf", ".md", ".markdown", ".txt"}
}
