package ranking

import (
	"context"
	"hash/fnv"
	"strings"
	"testing"
	"unicode"
	"unicode/utf8"

	"github.com/fyerfyer/doc-insight-system/internal/document"
	"github.com/fyerfyer/doc-insight-system/internal/embedding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// hashEmbedder 确定性的测试嵌入器
// 把文本映射为词袋向量：相同词命中相同维度，词重叠越多余弦相似度越高
type hashEmbedder struct {
	dim   int
	fail  map[string]error // 指定文本返回错误
	empty map[string]bool  // 指定文本返回空向量
}

func newHashEmbedder() *hashEmbedder {
	return &hashEmbedder{
		dim:   4096,
		fail:  make(map[string]error),
		empty: make(map[string]bool),
	}
}

func (e *hashEmbedder) Name() string { return "hash-test-model" }

func (e *hashEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err, ok := e.fail[text]; ok {
		return nil, err
	}
	if e.empty[text] {
		return []float32{}, nil
	}

	vector := make([]float32, e.dim)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	for _, word := range words {
		h := fnv.New32a()
		h.Write([]byte(word))
		vector[h.Sum32()%uint32(e.dim)]++
	}
	return vector, nil
}

func (e *hashEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	result := make([][]float32, len(texts))
	for i, text := range texts {
		vector, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		result[i] = vector
	}
	return result, nil
}

// sectionOf 构造测试节
func sectionOf(doc, title, body string, page int) document.Section {
	return document.Section{
		DocumentID: doc,
		Title:      title,
		Body:       body,
		PageNumber: page,
		CharLength: len(body),
	}
}

// TestRankOrdering 测试相似度排序
func TestRankOrdering(t *testing.T) {
	ranker := NewRanker(newHashEmbedder(),
		WithTopN(5),
		WithMinSimilarity(0.0),
	)

	query := Query{Task: "Find budget-friendly family restaurants with outdoor seating"}

	sections := []document.Section{
		sectionOf("guide.pdf", "BUDGET TIPS",
			"Look for lunch menus which are significantly cheaper than dinner.", 1),
		sectionOf("guide.pdf", "INTRODUCTION",
			"This guide covers outdoor seating options for families in Paris with budgets under 50 euros per meal.", 1),
	}

	result, err := ranker.Rank(context.Background(), query, sections)
	require.NoError(t, err)
	require.Len(t, result.Sections, 2)

	// 词重叠更多的节应排在前面
	assert.Equal(t, "INTRODUCTION", result.Sections[0].Section.Title)
	assert.Equal(t, "BUDGET TIPS", result.Sections[1].Section.Title)
	assert.Greater(t, result.Sections[0].Similarity, result.Sections[1].Similarity)
	assert.Equal(t, "hash-test-model", result.Model)
}

// TestRankDeterminism 测试排序结果可复现
func TestRankDeterminism(t *testing.T) {
	ranker := NewRanker(newHashEmbedder(), WithMinSimilarity(-1))

	query := Query{Role: "Analyst", Task: "summarize the findings"}
	sections := []document.Section{
		sectionOf("a.pdf", "One", "findings about the first topic in the collection", 1),
		sectionOf("a.pdf", "Two", "findings about the second topic in the collection", 2),
		sectionOf("b.pdf", "Three", "findings about the third topic in the collection", 1),
	}

	first, err := ranker.Rank(context.Background(), query, sections)
	require.NoError(t, err)
	second, err := ranker.Rank(context.Background(), query, sections)
	require.NoError(t, err)

	require.Equal(t, len(first.Sections), len(second.Sections))
	for i := range first.Sections {
		assert.Equal(t, first.Sections[i], second.Sections[i])
	}
}

// TestRankTieBreak 测试相同分数保持发现顺序
func TestRankTieBreak(t *testing.T) {
	ranker := NewRanker(newHashEmbedder(), WithMinSimilarity(-1))

	query := Query{Task: "identical content query"}

	// 三个节的嵌入文本完全相同，相似度必然相等
	sections := []document.Section{
		sectionOf("a.pdf", "Same", "identical body text for every candidate", 1),
		sectionOf("b.pdf", "Same", "identical body text for every candidate", 1),
		sectionOf("c.pdf", "Same", "identical body text for every candidate", 1),
	}

	result, err := ranker.Rank(context.Background(), query, sections)
	require.NoError(t, err)
	require.Len(t, result.Sections, 3)

	assert.Equal(t, "a.pdf", result.Sections[0].Section.DocumentID)
	assert.Equal(t, "b.pdf", result.Sections[1].Section.DocumentID)
	assert.Equal(t, "c.pdf", result.Sections[2].Section.DocumentID)
}

// TestRankFiltering 测试阈值过滤和数量截断
func TestRankFiltering(t *testing.T) {
	t.Run("threshold excludes sections", func(t *testing.T) {
		ranker := NewRanker(newHashEmbedder(), WithMinSimilarity(0.99))

		query := Query{Task: "quantum physics lecture notes"}
		sections := []document.Section{
			sectionOf("a.pdf", "Cooking", "a recipe for vegetable soup with garlic bread", 1),
		}

		result, err := ranker.Rank(context.Background(), query, sections)
		require.NoError(t, err)
		assert.Empty(t, result.Sections, "低于阈值的节应被排除")
	})

	t.Run("threshold is monotonic", func(t *testing.T) {
		query := Query{Task: "travel planning for families"}
		sections := []document.Section{
			sectionOf("a.pdf", "Travel", "travel planning advice for families on a budget", 1),
			sectionOf("a.pdf", "Packing", "packing list for a beach holiday with children", 2),
			sectionOf("a.pdf", "Other", "completely unrelated maintenance manual content", 3),
		}

		var prev int
		for i, threshold := range []float32{-1, 0, 0.2, 0.6, 0.99} {
			ranker := NewRanker(newHashEmbedder(), WithMinSimilarity(threshold))
			result, err := ranker.Rank(context.Background(), query, sections)
			require.NoError(t, err)

			if i > 0 {
				assert.LessOrEqual(t, len(result.Sections), prev,
					"提高阈值不应增加保留的节数")
			}
			prev = len(result.Sections)
		}
	})

	t.Run("top n truncation", func(t *testing.T) {
		ranker := NewRanker(newHashEmbedder(),
			WithTopN(2),
			WithMinSimilarity(-1),
		)

		query := Query{Task: "common words shared by all"}
		sections := []document.Section{
			sectionOf("a.pdf", "One", "common words shared by all candidates here", 1),
			sectionOf("a.pdf", "Two", "common words shared by all candidates there", 2),
			sectionOf("a.pdf", "Three", "common words shared by all candidates everywhere", 3),
		}

		result, err := ranker.Rank(context.Background(), query, sections)
		require.NoError(t, err)
		assert.Len(t, result.Sections, 2)
	})

	t.Run("retained similarity above threshold", func(t *testing.T) {
		threshold := float32(0.1)
		ranker := NewRanker(newHashEmbedder(), WithMinSimilarity(threshold))

		query := Query{Task: "travel advice for families"}
		sections := []document.Section{
			sectionOf("a.pdf", "Travel", "travel advice for families visiting the coast", 1),
			sectionOf("a.pdf", "Other", "industrial pump maintenance schedule", 2),
		}

		result, err := ranker.Rank(context.Background(), query, sections)
		require.NoError(t, err)
		for _, scored := range result.Sections {
			assert.GreaterOrEqual(t, scored.Similarity, threshold)
		}
	})
}

// TestRankEdgeCases 测试空输入和失败处理
func TestRankEdgeCases(t *testing.T) {
	t.Run("empty pool", func(t *testing.T) {
		ranker := NewRanker(newHashEmbedder())
		result, err := ranker.Rank(context.Background(), Query{Task: "anything"}, nil)
		require.NoError(t, err)
		assert.Empty(t, result.Sections)
	})

	t.Run("empty query", func(t *testing.T) {
		ranker := NewRanker(newHashEmbedder())
		sections := []document.Section{
			sectionOf("a.pdf", "One", "some candidate body text with enough words", 1),
		}
		result, err := ranker.Rank(context.Background(), Query{}, sections)
		require.NoError(t, err)
		assert.Empty(t, result.Sections)
	})

	t.Run("section embed failure skips section", func(t *testing.T) {
		embedder := newHashEmbedder()
		ranker := NewRanker(embedder, WithMinSimilarity(-1))

		query := Query{Task: "shared words for both sections"}
		good := sectionOf("a.pdf", "Good", "shared words for both sections in this body", 1)
		bad := sectionOf("a.pdf", "Bad", "this body fails to embed", 2)

		embedder.fail[ranker.embedText(bad)] = embedding.NewEmbeddingError(
			embedding.ErrCodeTimeout, embedding.ErrMsgTimeout)

		result, err := ranker.Rank(context.Background(), query, []document.Section{good, bad})
		require.NoError(t, err)
		require.Len(t, result.Sections, 1)
		assert.Equal(t, "Good", result.Sections[0].Section.Title)
		assert.Equal(t, 1, result.Skipped)
	})

	t.Run("invalid section vector skips section", func(t *testing.T) {
		embedder := newHashEmbedder()
		ranker := NewRanker(embedder, WithMinSimilarity(-1))

		query := Query{Task: "shared words for both sections"}
		good := sectionOf("a.pdf", "Good", "shared words for both sections in this body", 1)
		bad := sectionOf("a.pdf", "Bad", "this body yields no vector", 2)
		embedder.empty[ranker.embedText(bad)] = true

		result, err := ranker.Rank(context.Background(), query, []document.Section{good, bad})
		require.NoError(t, err)
		require.Len(t, result.Sections, 1)
		assert.Equal(t, "Good", result.Sections[0].Section.Title)
		assert.Equal(t, 1, result.Skipped)
	})

	t.Run("invalid query vector aborts run", func(t *testing.T) {
		embedder := newHashEmbedder()
		query := Query{Task: "doomed query"}
		embedder.empty[query.String()] = true

		ranker := NewRanker(embedder)
		sections := []document.Section{
			sectionOf("a.pdf", "One", "candidate body text", 1),
		}

		_, err := ranker.Rank(context.Background(), query, sections)
		assert.Error(t, err)
	})

	t.Run("fatal embed failure aborts run", func(t *testing.T) {
		embedder := newHashEmbedder()
		ranker := NewRanker(embedder, WithMinSimilarity(-1))

		query := Query{Task: "some query"}
		bad := sectionOf("a.pdf", "Bad", "provider dies on this one", 1)
		embedder.fail[ranker.embedText(bad)] = embedding.NewEmbeddingError(
			embedding.ErrCodeInvalidAPIKey, embedding.ErrMsgInvalidAPIKey)

		_, err := ranker.Rank(context.Background(), query, []document.Section{bad})
		assert.Error(t, err, "提供方级失败应中止整轮运行")
	})

	t.Run("query embed failure aborts run", func(t *testing.T) {
		embedder := newHashEmbedder()
		query := Query{Task: "doomed query"}
		embedder.fail[query.String()] = embedding.NewEmbeddingError(
			embedding.ErrCodeServerError, embedding.ErrMsgServerError)

		ranker := NewRanker(embedder)
		sections := []document.Section{
			sectionOf("a.pdf", "One", "candidate body text", 1),
		}

		_, err := ranker.Rank(context.Background(), query, sections)
		assert.Error(t, err)
	})
}

// TestRankRefinedText 测试排序结果附带展示文本
func TestRankRefinedText(t *testing.T) {
	ranker := NewRanker(newHashEmbedder(),
		WithMinSimilarity(-1),
		WithMaxRefinedLength(30),
	)

	query := Query{Task: "messy whitespace cleanup"}
	sections := []document.Section{
		sectionOf("a.pdf", "Messy",
			"messy    whitespace\n\ncleanup   target with a very long tail of extra words", 1),
	}

	result, err := ranker.Rank(context.Background(), query, sections)
	require.NoError(t, err)
	require.Len(t, result.Sections, 1)

	refined := result.Sections[0].RefinedText
	assert.LessOrEqual(t, len(refined), 30)
	assert.NotContains(t, refined, "\n")
	assert.NotContains(t, refined, "  ")
}

// TestEmbedTextRuneBoundary 测试嵌入文本截断不破坏多字节字符
func TestEmbedTextRuneBoundary(t *testing.T) {
	ranker := NewRanker(newHashEmbedder(), WithEmbedTextLimit(10))

	section := sectionOf("a.pdf", "T", strings.Repeat("多字节正文内容", 20), 1)
	got := ranker.embedText(section)
	assert.True(t, utf8.ValidString(got), "截断不应产生非法UTF-8")
}

// TestQueryString 测试查询文本拼接
func TestQueryString(t *testing.T) {
	tests := []struct {
		name  string
		query Query
		want  string
	}{
		{"all fields", Query{Role: "Planner", Task: "plan a trip", Description: "family holiday"},
			"Planner. plan a trip. family holiday"},
		{"task only", Query{Task: "plan a trip"}, "plan a trip"},
		{"empty", Query{}, ""},
		{"whitespace only", Query{Role: "  ", Task: "\t"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.query.String())
			assert.Equal(t, tt.want == "", tt.query.IsEmpty())
		})
	}
}
