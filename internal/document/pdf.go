package document

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PDFParser PDF文档解析器
type PDFParser struct{}

// NewPDFParser 创建一个新的PDF解析器
func NewPDFParser() Parser {
	return &PDFParser{}
}

// pdfcpu按页输出提取文件，文件名以"_页码.txt"结尾
var pageFilePattern = regexp.MustCompile(`(\d+)\.txt$`)

// ParsePages 解析PDF文件并按页提取文本内容
func (p *PDFParser) ParsePages(filePath string) ([]PageText, error) {
	// 创建临时目录用于存放提取的文本
	tmpDir, err := os.MkdirTemp("", "pdfcpu_extract_")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	// 使用默认配置
	conf := model.NewDefaultConfiguration()

	// 提取文本到临时目录，每页一个txt文件
	if err := api.ExtractContentFile(filePath, tmpDir, nil, conf); err != nil {
		return nil, fmt.Errorf("failed to extract text from PDF: %v", err)
	}

	// 读取所有提取出来的txt文件
	entries, err := os.ReadDir(tmpDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read extracted text dir: %v", err)
	}

	var pages []PageText
	for _, entry := range entries {
		if !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}

		// 从文件名解析页码
		m := pageFilePattern.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		pageNum, err := strconv.Atoi(m[1])
		if err != nil || pageNum < 1 {
			continue
		}

		data, err := os.ReadFile(filepath.Join(tmpDir, entry.Name()))
		if err != nil {
			continue
		}

		pages = append(pages, PageText{
			PageNumber: pageNum,
			Text:       strings.TrimSpace(string(data)),
		})
	}

	// 按页码升序排列（文件名顺序在10页以上不可靠）
	sort.Slice(pages, func(i, j int) bool {
		return pages[i].PageNumber < pages[j].PageNumber
	})

	return pages, nil
}
