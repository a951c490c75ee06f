package services

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/fyerfyer/doc-insight-system/internal/ranking"
	"github.com/google/uuid"
)

// AnalysisResult 一轮分析的输出结构
// 对应output.json，排序结果生成后一次性组装，不再修改
type AnalysisResult struct {
	Metadata           ResultMetadata      `json:"metadata"`
	ExtractedSections  []ExtractedSection  `json:"extracted_sections"`
	SubsectionAnalysis []SubsectionRefined `json:"subsection_analysis"`
}

// ResultMetadata 输出的元数据
type ResultMetadata struct {
	RunID               string   `json:"run_id"`
	InputDocuments      []string `json:"input_documents"`
	Persona             string   `json:"persona"`
	JobToBeDone         string   `json:"job_to_be_done"`
	Description         string   `json:"description,omitempty"`
	SimilarityModel     string   `json:"similarity_model"`
	ProcessingTimestamp string   `json:"processing_timestamp"`
}

// ExtractedSection 排序后的节条目
type ExtractedSection struct {
	Document       string  `json:"document"`
	SectionTitle   string  `json:"section_title"`
	ImportanceRank int     `json:"importance_rank"`
	PageNumber     int     `json:"page_number"`
	Similarity     float32 `json:"similarity"`
}

// SubsectionRefined 节的展示文本条目
type SubsectionRefined struct {
	Document    string `json:"document"`
	RefinedText string `json:"refined_text"`
	PageNumber  int    `json:"page_number"`
}

// AssembleResult 将排序结果组装为输出结构
// 排序为空时输出同样有效，只是两个列表为空
func AssembleResult(input *InputManifest, ranked *ranking.RankedResult) *AnalysisResult {
	inputDocs := make([]string, 0, len(input.Documents))
	for _, ref := range input.Documents {
		inputDocs = append(inputDocs, ref.Filename)
	}

	result := &AnalysisResult{
		Metadata: ResultMetadata{
			RunID:               uuid.New().String(),
			InputDocuments:      inputDocs,
			Persona:             input.Persona.Role,
			JobToBeDone:         input.JobToBeDone.Task,
			Description:         input.ChallengeInfo.Description,
			SimilarityModel:     ranked.Model,
			ProcessingTimestamp: time.Now().Format(time.RFC3339),
		},
		ExtractedSections:  make([]ExtractedSection, 0, len(ranked.Sections)),
		SubsectionAnalysis: make([]SubsectionRefined, 0, len(ranked.Sections)),
	}

	for i, scored := range ranked.Sections {
		result.ExtractedSections = append(result.ExtractedSections, ExtractedSection{
			Document:       scored.Section.DocumentID,
			SectionTitle:   scored.Section.Title,
			ImportanceRank: i + 1,
			PageNumber:     scored.Section.PageNumber,
			Similarity:     scored.Similarity,
		})

		result.SubsectionAnalysis = append(result.SubsectionAnalysis, SubsectionRefined{
			Document:    scored.Section.DocumentID,
			RefinedText: scored.RefinedText,
			PageNumber:  scored.Section.PageNumber,
		})
	}

	return result
}

// Save 将输出结构写入文件
// 只在组装成功后写入，失败的运行不产生部分输出
func (r *AnalysisResult) Save(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal analysis result: %v", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %v", err)
	}

	return nil
}
