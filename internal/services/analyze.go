package services

import (
	"context"
	"errors"
	"time"

	"github.com/fyerfyer/doc-insight-system/internal/document"
	"github.com/fyerfyer/doc-insight-system/internal/ranking"
	"github.com/fyerfyer/doc-insight-system/pkg/storage"
	"github.com/sirupsen/logrus"
)

// AnalyzeService 文档分析服务
// 负责协调文档解析、分节、相关性排序和结果组装
type AnalyzeService struct {
	docs      storage.Storage            // 文档来源
	segmenter *document.SectionSegmenter // 文档分节器
	ranker    *ranking.Ranker            // 相关性排序器
	timeout   time.Duration              // 单轮处理超时时间
	logger    *logrus.Logger             // 日志记录器
}

// AnalyzeOption 分析服务配置选项
type AnalyzeOption func(*AnalyzeService)

// NewAnalyzeService 创建文档分析服务
func NewAnalyzeService(
	docs storage.Storage,
	segmenter *document.SectionSegmenter,
	ranker *ranking.Ranker,
	opts ...AnalyzeOption,
) *AnalyzeService {
	srv := &AnalyzeService{
		docs:      docs,
		segmenter: segmenter,
		ranker:    ranker,
		timeout:   time.Minute * 5,
		logger:    logrus.New(),
	}

	for _, opt := range opts {
		opt(srv)
	}

	return srv
}

// WithTimeout 设置单轮处理超时时间
func WithTimeout(timeout time.Duration) AnalyzeOption {
	return func(s *AnalyzeService) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

// WithLogger 设置日志记录器
func WithLogger(logger *logrus.Logger) AnalyzeOption {
	return func(s *AnalyzeService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Analyze 执行一轮完整分析
// 逐个文档解析并分节形成候选池，再按查询做相关性排序；
// 单个文档的解析失败只跳过该文档，排序的致命错误中止整轮运行。
// 候选池为空时返回空结果而不是错误
func (s *AnalyzeService) Analyze(ctx context.Context, input *InputManifest) (*AnalysisResult, error) {
	if input == nil {
		return nil, errors.New("input manifest cannot be nil")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	pool := s.collectSections(input)

	s.logger.WithFields(logrus.Fields{
		"documents": len(input.Documents),
		"sections":  len(pool),
	}).Info("Candidate pool collected")

	query := ranking.Query{
		Role:        input.Persona.Role,
		Task:        input.JobToBeDone.Task,
		Description: input.ChallengeInfo.Description,
	}

	ranked, err := s.ranker.Rank(ctx, query, pool)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"ranked":  len(ranked.Sections),
		"skipped": ranked.Skipped,
	}).Info("Relevance ranking completed")

	return AssembleResult(input, ranked), nil
}

// collectSections 解析所有输入文档并汇总候选节
// 保持输入清单中的文档顺序，保证排序平分时的确定性
func (s *AnalyzeService) collectSections(input *InputManifest) []document.Section {
	var pool []document.Section

	for _, ref := range input.Documents {
		path, err := s.docs.Resolve(ref.Filename)
		if err != nil {
			s.logger.WithField("file", ref.Filename).Warn("Document not found, skipping")
			continue
		}

		parser, err := document.ParserFactory(path)
		if err != nil {
			s.logger.WithField("file", ref.Filename).WithError(err).Warn("Unsupported document, skipping")
			continue
		}

		pages, err := parser.ParsePages(path)
		if err != nil {
			s.logger.WithField("file", ref.Filename).WithError(err).Warn("Failed to parse document, skipping")
			continue
		}

		if len(pages) == 0 {
			s.logger.WithField("file", ref.Filename).Warn("Document yielded no page text")
			continue
		}

		sections := s.segmenter.Segment(ref.Filename, pages)

		s.logger.WithFields(logrus.Fields{
			"file":     ref.Filename,
			"pages":    len(pages),
			"sections": len(sections),
		}).Debug("Document segmented")

		pool = append(pool, sections...)
	}

	return pool
}
