package ranking

import (
	"strings"

	"github.com/fyerfyer/doc-insight-system/internal/document"
)

// Query 一次运行的检索条件
// 由角色、任务和可选描述组成，创建后不再修改
type Query struct {
	Role        string // 使用者角色（如"Travel Planner"）
	Task        string // 要完成的任务
	Description string // 项目描述（可选）
}

// String 将查询字段确定性地拼接为单条查询文本
func (q Query) String() string {
	parts := make([]string, 0, 3)
	for _, part := range []string{q.Role, q.Task, q.Description} {
		if s := strings.TrimSpace(part); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ". ")
}

// IsEmpty 判断查询是否为空
func (q Query) IsEmpty() bool {
	return q.String() == ""
}

// ScoredSection 带相似度评分的节
type ScoredSection struct {
	Section     document.Section // 节内容
	Similarity  float32          // 与查询的余弦相似度，范围[-1,1]
	RefinedText string           // 清洗并截断后的正文，用于展示
}

// RankedResult 一轮运行的排序结果
// 按相似度降序排列，长度不超过配置的TopN
type RankedResult struct {
	Query    Query           // 本轮查询
	Model    string          // 使用的嵌入模型名称
	Sections []ScoredSection // 排序后的节
	Skipped  int             // 因单条嵌入失败被跳过的节数
}
