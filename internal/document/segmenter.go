package document

import (
	"strings"
)

// Section 从文档切分出来的带标题文本节
// 是相关性排序的基本单元，创建后不再修改
type Section struct {
	DocumentID string // 所属文档标识（文件名）
	Title      string // 节标题，始终非空
	Body       string // 节正文
	PageNumber int    // 节起始页码
	CharLength int    // 正文字符数，等于len(Body)
}

// SegmenterConfig 分节器配置
// 构造时传入，之后不再变更
type SegmenterConfig struct {
	MinSectionLength  int // 节正文最小字符数，低于该值的节被丢弃
	MaxHeadingLength  int // 标题行最大字符数
	MaxHeadingWords   int // 首字母大写标题的最大词数
	SectionSizeBudget int // 单节长度预算，超出时按段落二次切分
}

// DefaultSegmenterConfig 返回默认分节器配置
func DefaultSegmenterConfig() SegmenterConfig {
	return SegmenterConfig{
		MinSectionLength:  50,
		MaxHeadingLength:  200,
		MaxHeadingWords:   10,
		SectionSizeBudget: 2000,
	}
}

// SectionSegmenter 文档分节器
// 基于排版启发式规则将页文本切分为语义连贯的带标题节
type SectionSegmenter struct {
	config     SegmenterConfig
	classifier *HeadingClassifier
}

// NewSectionSegmenter 创建新的文档分节器
func NewSectionSegmenter(config SegmenterConfig) *SectionSegmenter {
	return &SectionSegmenter{
		config:     config,
		classifier: NewHeadingClassifier(config.MaxHeadingLength, config.MaxHeadingWords),
	}
}

// rawSegment 切分过程中的中间段
type rawSegment struct {
	title string   // 标题行，无标题段为空
	lines []string // 正文行，空字符串表示段落分隔
}

// Segment 将一个文档的页文本切分为节
// 各页独立处理，节按页码和页内出现顺序排列
// 没有任何节达到长度下限时返回空切片，不视为错误
func (s *SectionSegmenter) Segment(documentID string, pages []PageText) []Section {
	var sections []Section

	for _, page := range pages {
		sections = append(sections, s.segmentPage(documentID, page)...)
	}

	return sections
}

// segmentPage 切分单页文本
func (s *SectionSegmenter) segmentPage(documentID string, page PageText) []Section {
	text := strings.TrimSpace(page.Text)
	if text == "" {
		return nil
	}

	segments := s.partition(text)

	var sections []Section
	for _, seg := range segments {
		for _, chunk := range s.splitOversized(seg) {
			body := strings.TrimSpace(chunk.body)
			if len(body) < s.config.MinSectionLength {
				continue
			}

			title := chunk.title
			if title == "" {
				title = s.synthesizeTitle(body)
			}

			sections = append(sections, Section{
				DocumentID: documentID,
				Title:      title,
				Body:       body,
				PageNumber: page.PageNumber,
				CharLength: len(body),
			})
		}
	}

	return sections
}

// partition 以标题行为边界将页文本划分为段
// 首个标题之前的行构成一个无标题的前导段
func (s *SectionSegmenter) partition(text string) []rawSegment {
	lines := strings.Split(text, "\n")

	var segments []rawSegment
	current := rawSegment{}

	flush := func() {
		if current.title != "" || hasContent(current.lines) {
			segments = append(segments, current)
		}
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		if trimmed == "" {
			// 保留段落分隔信息，二次切分时使用
			current.lines = append(current.lines, "")
			continue
		}

		if _, ok := s.classifier.IsHeading(trimmed); ok {
			flush()
			current = rawSegment{title: trimmed}
			continue
		}

		current.lines = append(current.lines, trimmed)
	}
	flush()

	return segments
}

// bodyChunk 二次切分后的正文块
type bodyChunk struct {
	title string
	body  string
}

// splitOversized 对超出长度预算的段按段落边界二次切分
// 过长的单节会稀释相似度信号，按空行边界拆开
func (s *SectionSegmenter) splitOversized(seg rawSegment) []bodyChunk {
	body := joinLines(seg.lines)

	if len(body) <= s.config.SectionSizeBudget {
		return []bodyChunk{{title: seg.title, body: body}}
	}

	paragraphs := splitParagraphs(seg.lines)

	var chunks []bodyChunk
	var buf strings.Builder
	title := seg.title

	emit := func() {
		if buf.Len() == 0 {
			return
		}
		chunks = append(chunks, bodyChunk{title: title, body: buf.String()})
		buf.Reset()
		// 续块没有标题行，由正文合成
		title = ""
	}

	for _, para := range paragraphs {
		if buf.Len() > 0 && buf.Len()+len(para) > s.config.SectionSizeBudget {
			emit()
		}
		if buf.Len() > 0 {
			buf.WriteString("\n\n")
		}
		buf.WriteString(para)
	}
	emit()

	return chunks
}

// synthesizeTitle 从正文开头合成标题
// 取前几个词，超长时截断并加省略号
func (s *SectionSegmenter) synthesizeTitle(body string) string {
	const titleWords = 8

	words := strings.Fields(body)
	if len(words) > titleWords {
		words = words[:titleWords]
		return capTitle(strings.Join(words, " ")+"...", s.config.MaxHeadingLength)
	}
	return capTitle(strings.Join(words, " "), s.config.MaxHeadingLength)
}

// capTitle 将标题截断到最大长度
func capTitle(title string, maxLen int) string {
	if len(title) <= maxLen {
		return title
	}
	return strings.TrimSpace(title[:maxLen])
}

// joinLines 将正文行拼接为节正文
// 连续空行压缩为一个段落分隔
func joinLines(lines []string) string {
	var b strings.Builder
	blank := false

	for _, line := range lines {
		if line == "" {
			blank = true
			continue
		}
		if b.Len() > 0 {
			if blank {
				b.WriteString("\n\n")
			} else {
				b.WriteString("\n")
			}
		}
		blank = false
		b.WriteString(line)
	}

	return b.String()
}

// splitParagraphs 按空行将正文行划分为段落
func splitParagraphs(lines []string) []string {
	var paragraphs []string
	var buf []string

	flush := func() {
		if len(buf) > 0 {
			paragraphs = append(paragraphs, strings.Join(buf, "\n"))
			buf = nil
		}
	}

	for _, line := range lines {
		if line == "" {
			flush()
			continue
		}
		buf = append(buf, line)
	}
	flush()

	return paragraphs
}

// hasContent 判断行集合中是否有非空内容
func hasContent(lines []string) bool {
	for _, line := range lines {
		if line != "" {
			return true
		}
	}
	return false
}
