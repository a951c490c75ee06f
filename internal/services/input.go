package services

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/fyerfyer/doc-insight-system/pkg/storage"
)

// InputManifest 一轮分析的输入清单
// 对应input.json的结构，描述待分析文档和使用者的角色与任务
type InputManifest struct {
	ChallengeInfo ChallengeInfo `json:"challenge_info"`
	Documents     []DocumentRef `json:"documents"`
	Persona       Persona       `json:"persona"`
	JobToBeDone   JobToBeDone   `json:"job_to_be_done"`
}

// ChallengeInfo 本轮分析的标识信息
type ChallengeInfo struct {
	ChallengeID  string `json:"challenge_id"`
	TestCaseName string `json:"test_case_name"`
	Description  string `json:"description"`
}

// DocumentRef 待分析文档的引用
type DocumentRef struct {
	Filename string `json:"filename"`
	Title    string `json:"title"`
}

// Persona 使用者角色
type Persona struct {
	Role string `json:"role"`
}

// JobToBeDone 使用者要完成的任务
type JobToBeDone struct {
	Task string `json:"task"`
}

// LoadInputManifest 从文件加载输入清单
func LoadInputManifest(path string) (*InputManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file: %v", err)
	}

	var manifest InputManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse input file: %v", err)
	}

	return &manifest, nil
}

// Save 将输入清单写入文件
func (m *InputManifest) Save(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal input manifest: %v", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write input file: %v", err)
	}

	return nil
}

// GenerateInputManifest 扫描文档来源自动生成输入清册
// 文档标题由文件名推导，角色和任务为空时使用默认值
func GenerateInputManifest(docs storage.Storage, role, task, description string) (*InputManifest, error) {
	files, err := docs.List()
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no supported documents found")
	}

	if role == "" {
		role = "Analyst"
	}
	if task == "" {
		task = "Analyze and summarize key information"
	}
	if description == "" {
		description = fmt.Sprintf("Document analysis for %s", strings.ToLower(role))
	}

	refs := make([]DocumentRef, 0, len(files))
	for _, f := range files {
		refs = append(refs, DocumentRef{
			Filename: f.Name,
			Title:    DeriveTitle(f.Name),
		})
	}

	return &InputManifest{
		ChallengeInfo: ChallengeInfo{
			ChallengeID:  fmt.Sprintf("user_analysis_%s", time.Now().Format("20060102_150405")),
			TestCaseName: "user_defined_analysis",
			Description:  description,
		},
		Documents:   refs,
		Persona:     Persona{Role: role},
		JobToBeDone: JobToBeDone{Task: task},
	}, nil
}

// DeriveTitle 从文件名推导文档标题
// 去掉扩展名，连字符和下划线换成空格，首字母大写
func DeriveTitle(filename string) string {
	name := strings.TrimSuffix(filename, filepath.Ext(filename))
	name = strings.ReplaceAll(name, "-", " ")
	name = strings.ReplaceAll(name, "_", " ")

	words := strings.Fields(name)
	for i, word := range words {
		r, size := utf8.DecodeRuneInString(word)
		words[i] = string(unicode.ToUpper(r)) + word[size:]
	}

	return strings.Join(words, " ")
}
