package document

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pageOf 构造单页测试输入
func pageOf(num int, text string) []PageText {
	return []PageText{{PageNumber: num, Text: text}}
}

// TestSegmentHeadings 测试标题边界切分
func TestSegmentHeadings(t *testing.T) {
	segmenter := NewSectionSegmenter(SegmenterConfig{
		MinSectionLength:  20,
		MaxHeadingLength:  200,
		MaxHeadingWords:   10,
		SectionSizeBudget: 2000,
	})

	t.Run("two uppercase headings", func(t *testing.T) {
		text := "INTRODUCTION\n" +
			"This guide covers outdoor seating options for families in Paris with budgets under 50 euros per meal.\n\n" +
			"BUDGET TIPS\n" +
			"Look for lunch menus which are significantly cheaper than dinner."

		sections := segmenter.Segment("guide.pdf", pageOf(1, text))
		require.Len(t, sections, 2, "应该切分出2个节")

		assert.Equal(t, "INTRODUCTION", sections[0].Title)
		assert.Contains(t, sections[0].Body, "outdoor seating")
		assert.Equal(t, "BUDGET TIPS", sections[1].Title)
		assert.Contains(t, sections[1].Body, "lunch menus")

		for _, s := range sections {
			assert.Equal(t, 1, s.PageNumber)
			assert.Equal(t, "guide.pdf", s.DocumentID)
		}
	})

	t.Run("leading text before first heading", func(t *testing.T) {
		text := "Some preamble text that appears before the very first heading of this page.\n\n" +
			"DETAILS\n" +
			"The rest of the page content lives under this heading for a while."

		sections := segmenter.Segment("doc.pdf", pageOf(3, text))
		require.Len(t, sections, 2)

		// 前导段的标题从正文合成
		assert.Contains(t, sections[0].Title, "Some preamble text")
		assert.Equal(t, "DETAILS", sections[1].Title)
	})

	t.Run("numbered headings", func(t *testing.T) {
		text := "1. Setup\n" +
			"Install the binary and create the configuration file before the first run.\n" +
			"2. Usage\n" +
			"Run the analyzer with the folder flag pointing at your documents."

		sections := segmenter.Segment("doc.pdf", pageOf(1, text))
		require.Len(t, sections, 2)
		assert.Equal(t, "1. Setup", sections[0].Title)
		assert.Equal(t, "2. Usage", sections[1].Title)
	})
}

// TestSegmentInvariants 测试所有产出节必须满足的不变量
func TestSegmentInvariants(t *testing.T) {
	config := SegmenterConfig{
		MinSectionLength:  50,
		MaxHeadingLength:  200,
		MaxHeadingWords:   10,
		SectionSizeBudget: 300,
	}
	segmenter := NewSectionSegmenter(config)

	text := "OVERVIEW\n" +
		"First paragraph with enough characters to clear the minimum section threshold easily.\n\n" +
		"Second paragraph that also carries plenty of text so the size budget forces a split.\n\n" +
		"Third paragraph keeps adding material well beyond the section size budget in use here.\n\n" +
		"Fourth paragraph to guarantee at least two chunks come out of the oversized segment.\n\n" +
		"tiny"

	sections := segmenter.Segment("doc.pdf", pageOf(2, text))
	require.NotEmpty(t, sections)

	for _, s := range sections {
		assert.GreaterOrEqual(t, s.CharLength, config.MinSectionLength, "节长度不能低于下限")
		assert.Equal(t, len(s.Body), s.CharLength, "CharLength必须等于正文长度")
		assert.NotEmpty(t, s.Title, "标题必须非空")
		assert.Equal(t, 2, s.PageNumber)
	}

	t.Logf("sections: %d", len(sections))
	assert.GreaterOrEqual(t, len(sections), 2, "超出长度预算的段应该被二次切分")
}

// TestSegmentIdempotence 测试相同输入产生相同输出
func TestSegmentIdempotence(t *testing.T) {
	segmenter := NewSectionSegmenter(DefaultSegmenterConfig())

	pages := []PageText{
		{PageNumber: 1, Text: "INTRODUCTION\nA reasonably long body of text describing the purpose of the document in detail."},
		{PageNumber: 2, Text: "METHODS\nAnother reasonably long body of text describing how the analysis was carried out."},
	}

	first := segmenter.Segment("doc.pdf", pages)
	second := segmenter.Segment("doc.pdf", pages)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i], second[i])
	}
}

// TestSegmentFallbacks 测试无标题页的回退策略
func TestSegmentFallbacks(t *testing.T) {
	segmenter := NewSectionSegmenter(SegmenterConfig{
		MinSectionLength:  20,
		MaxHeadingLength:  200,
		MaxHeadingWords:   10,
		SectionSizeBudget: 2000,
	})

	t.Run("no headings yields synthesized section", func(t *testing.T) {
		text := "just a plain lowercase paragraph without any heading structure but with enough content to keep."

		sections := segmenter.Segment("doc.pdf", pageOf(1, text))
		require.Len(t, sections, 1)
		assert.Contains(t, sections[0].Title, "just a plain lowercase paragraph")
		assert.True(t, strings.HasSuffix(sections[0].Title, "..."), "合成标题超过词数时应带省略号")
	})

	t.Run("empty page yields no sections", func(t *testing.T) {
		sections := segmenter.Segment("doc.pdf", pageOf(1, "   \n  \n"))
		assert.Empty(t, sections)
	})

	t.Run("short fragments are discarded", func(t *testing.T) {
		sections := segmenter.Segment("doc.pdf", pageOf(1, "HEADING\ntoo short"))
		assert.Empty(t, sections, "低于长度下限的节应被丢弃而不是合并")
	})

	t.Run("empty input yields empty pool", func(t *testing.T) {
		sections := segmenter.Segment("doc.pdf", nil)
		assert.Empty(t, sections)
	})
}

// TestSynthesizedTitleCap 测试合成标题的长度上限
func TestSynthesizedTitleCap(t *testing.T) {
	segmenter := NewSectionSegmenter(SegmenterConfig{
		MinSectionLength:  10,
		MaxHeadingLength:  30,
		MaxHeadingWords:   3,
		SectionSizeBudget: 2000,
	})

	text := "supercalifragilisticexpialidocious incomprehensibilities floccinaucinihilipilification antidisestablishmentarianism extra words here"
	sections := segmenter.Segment("doc.pdf", pageOf(1, text))
	require.Len(t, sections, 1)
	assert.LessOrEqual(t, len(sections[0].Title), 30)
}
