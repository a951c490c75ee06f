package ranking

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/fyerfyer/doc-insight-system/internal/document"
	"github.com/fyerfyer/doc-insight-system/internal/embedding"
	"github.com/sirupsen/logrus"
)

// Ranker 相关性排序器
// 将候选节与查询映射到同一向量空间，按余弦相似度产出确定性的Top-N排序
type Ranker struct {
	embedder         embedding.Client // 嵌入模型客户端
	topN             int              // 最多返回的节数
	minSimilarity    float32          // 最低相似度阈值
	embedTextLimit   int              // 参与嵌入的正文前缀长度上限
	maxRefinedLength int              // 展示文本的最大字符数
	logger           *logrus.Logger   // 日志记录器
}

// RankerOption 排序器配置选项
type RankerOption func(*Ranker)

// NewRanker 创建相关性排序器
func NewRanker(embedder embedding.Client, opts ...RankerOption) *Ranker {
	r := &Ranker{
		embedder:         embedder,
		topN:             5,
		minSimilarity:    0.1,
		embedTextLimit:   512,
		maxRefinedLength: 1000,
		logger:           logrus.New(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// WithTopN 设置最多返回的节数
func WithTopN(n int) RankerOption {
	return func(r *Ranker) {
		if n > 0 {
			r.topN = n
		}
	}
}

// WithMinSimilarity 设置最低相似度阈值
func WithMinSimilarity(score float32) RankerOption {
	return func(r *Ranker) {
		r.minSimilarity = score
	}
}

// WithEmbedTextLimit 设置参与嵌入的正文前缀长度
func WithEmbedTextLimit(limit int) RankerOption {
	return func(r *Ranker) {
		if limit > 0 {
			r.embedTextLimit = limit
		}
	}
}

// WithMaxRefinedLength 设置展示文本的最大字符数
func WithMaxRefinedLength(length int) RankerOption {
	return func(r *Ranker) {
		if length > 0 {
			r.maxRefinedLength = length
		}
	}
}

// WithLogger 设置日志记录器
func WithLogger(logger *logrus.Logger) RankerOption {
	return func(r *Ranker) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Rank 对候选节做相关性排序
// 空查询或空候选池返回空结果而不是错误；单个节的嵌入失败只
// 跳过该节，查询本身嵌入失败则中止整轮运行
func (r *Ranker) Rank(ctx context.Context, query Query, sections []document.Section) (*RankedResult, error) {
	result := &RankedResult{
		Query:    query,
		Model:    r.embedder.Name(),
		Sections: []ScoredSection{},
	}

	if query.IsEmpty() || len(sections) == 0 {
		return result, nil
	}

	queryVector, err := r.embedder.Embed(ctx, query.String())
	if err != nil {
		return nil, fmt.Errorf("failed to embed query with model %s: %w", r.embedder.Name(), err)
	}
	if err := ValidateVector(queryVector, 0); err != nil {
		return nil, fmt.Errorf("invalid query vector from model %s: %w", r.embedder.Name(), err)
	}

	scored := make([]ScoredSection, 0, len(sections))
	for _, section := range sections {
		vector, err := r.embedder.Embed(ctx, r.embedText(section))
		if err != nil {
			if embedding.IsFatal(err) {
				return nil, fmt.Errorf("embedding provider unavailable (model %s): %w", r.embedder.Name(), err)
			}

			r.logger.WithFields(logrus.Fields{
				"document": section.DocumentID,
				"title":    section.Title,
				"page":     section.PageNumber,
			}).WithError(err).Warn("Failed to embed section, skipping")
			result.Skipped++
			continue
		}

		// 节向量必须和查询向量同维
		if err := ValidateVector(vector, len(queryVector)); err != nil {
			r.logger.WithFields(logrus.Fields{
				"document": section.DocumentID,
				"title":    section.Title,
			}).WithError(err).Warn("Invalid section vector, skipping")
			result.Skipped++
			continue
		}

		similarity, err := CosineSimilarity(queryVector, vector)
		if err != nil {
			r.logger.WithError(err).Warn("Failed to score section, skipping")
			result.Skipped++
			continue
		}

		if similarity < r.minSimilarity {
			continue
		}

		scored = append(scored, ScoredSection{
			Section:    section,
			Similarity: similarity,
		})
	}

	// 稳定排序：相似度降序，相同分数保持发现顺序
	// （文档顺序、页码、页内位置），保证多次运行结果一致
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Similarity > scored[j].Similarity
	})

	if len(scored) > r.topN {
		scored = scored[:r.topN]
	}

	for i := range scored {
		scored[i].RefinedText = RefineText(scored[i].Section.Body, r.maxRefinedLength)
	}

	result.Sections = scored
	return result, nil
}

// embedText 构造节的嵌入文本
// 标题加正文前缀，前缀在词边界截断，让信号偏向标题
func (r *Ranker) embedText(section document.Section) string {
	body := section.Body
	if len(body) > r.embedTextLimit {
		cut := r.embedTextLimit
		for cut > 0 && body[cut] != ' ' && body[cut] != '\n' {
			cut--
		}
		if cut == 0 {
			// 没有词边界时硬截断，回退到完整字符的起点
			cut = r.embedTextLimit
			for cut > 0 && !utf8.RuneStart(body[cut]) {
				cut--
			}
		}
		body = body[:cut]
	}

	return strings.TrimSpace(section.Title + " " + body)
}
