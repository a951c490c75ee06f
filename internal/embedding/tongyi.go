package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// 默认API端点
	defaultDashScopeEndpoint = "https://dashscope.aliyuncs.com/api/v1/services/embeddings/text-embedding/text-embedding"

	// 单次请求的最大文本条数（DashScope接口限制）
	maxBatchTexts = 25

	// 模型的默认输出维度
	defaultDimension = 1024
)

// TongyiClient 实现通义千问嵌入API客户端
type TongyiClient struct {
	apiKey     string       // API密钥
	endpoint   string       // API端点
	model      string       // 模型名称
	httpClient *http.Client // HTTP客户端
	maxRetries int          // 最大重试次数
	dimensions int          // 向量维度
}

// NewTongyiClient 创建新的通义千问嵌入客户端
func NewTongyiClient(opts ...Option) (Client, error) {
	cfg := NewConfig(opts...)

	// 验证API密钥，缺失时直接视为提供方不可用
	if cfg.APIKey == "" {
		return nil, NewEmbeddingError(ErrCodeInvalidAPIKey, ErrMsgInvalidAPIKey)
	}

	endpoint := cfg.BaseURL
	if endpoint == "" {
		endpoint = defaultDashScopeEndpoint
	}

	model := cfg.Model
	if model == "" {
		model = DefaultConfig().Model
	}

	return &TongyiClient{
		apiKey:     cfg.APIKey,
		endpoint:   endpoint,
		model:      model,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		maxRetries: cfg.MaxRetries,
		dimensions: cfg.Dimensions,
	}, nil
}

// Name 返回模型名称
func (c *TongyiClient) Name() string {
	return c.model
}

// Embed 生成单条文本的向量表示
func (c *TongyiClient) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, NewEmbeddingError(ErrCodeEmptyInput, ErrMsgEmptyInput)
	}

	vectors, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}

	if len(vectors) == 0 || vectors[0] == nil {
		return nil, NewEmbeddingError(ErrCodeServerError, "no embedding vectors returned")
	}

	return vectors[0], nil
}

// EmbedBatch 批量生成文本的向量表示
func (c *TongyiClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	if len(texts) > maxBatchTexts {
		return nil, NewEmbeddingError(ErrCodeInvalidRequest,
			fmt.Sprintf("at most %d texts per batch", maxBatchTexts))
	}

	reqData := DashScopeRequest{
		Model: c.model,
		Input: DashScopeRequestInput{Texts: texts},
	}

	// v3模型支持指定输出维度
	if c.isV3Model() {
		params := &DashScopeParameters{OutputType: "dense"}
		if c.dimensions != 0 && c.dimensions != defaultDimension {
			if !isValidDimension(c.dimensions) {
				return nil, NewEmbeddingError(ErrCodeInvalidRequest,
					fmt.Sprintf("invalid dimension: %d", c.dimensions))
			}
			params.Dimension = c.dimensions
		}
		reqData.Parameters = params
	}

	var resp DashScopeResponse
	if err := c.sendRequest(ctx, reqData, &resp); err != nil {
		return nil, err
	}

	if resp.Code != "" {
		return nil, NewEmbeddingError(ErrCodeServerError,
			fmt.Sprintf("API error: %s (%s)", resp.Message, resp.Code))
	}

	if len(resp.Output.Embeddings) == 0 {
		return nil, NewEmbeddingError(ErrCodeServerError, "no embeddings returned")
	}

	// 按照原始文本顺序构建结果
	result := make([][]float32, len(texts))
	for _, emb := range resp.Output.Embeddings {
		if emb.TextIndex < 0 || emb.TextIndex >= len(texts) {
			continue
		}
		result[emb.TextIndex] = emb.Embedding
	}

	return result, nil
}

// sendRequest 发送API请求并解析响应
// 服务端错误按指数退避重试，客户端错误直接返回
func (c *TongyiClient) sendRequest(ctx context.Context, reqData interface{}, respObj interface{}) error {
	jsonData, err := json.Marshal(reqData)
	if err != nil {
		return NewEmbeddingError(ErrCodeInvalidRequest, fmt.Sprintf("failed to marshal request: %v", err))
	}

	var resp *http.Response
	var lastErr error
	var lastStatus int
	var lastBody []byte

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			// 指数退避重试
			select {
			case <-ctx.Done():
				return NewEmbeddingError(ErrCodeTimeout, ctx.Err().Error())
			case <-time.After(time.Duration(1<<attempt) * 100 * time.Millisecond):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(jsonData))
		if err != nil {
			return NewEmbeddingError(ErrCodeInvalidRequest, fmt.Sprintf("failed to create request: %v", err))
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
		req.Header.Set("Accept", "application/json")

		resp, lastErr = c.httpClient.Do(req)
		if lastErr != nil {
			lastStatus = 0
			continue
		}

		// 服务端错误重试，保留最后一次的状态和响应体用于报错
		if resp.StatusCode >= 500 {
			lastStatus = resp.StatusCode
			lastBody, _ = io.ReadAll(resp.Body)
			resp.Body.Close()
			resp = nil
			lastErr = nil
			continue
		}

		break
	}

	if resp == nil {
		if lastStatus >= 500 {
			return NewEmbeddingError(ErrCodeServerError,
				fmt.Sprintf("%s: status %d: %s", ErrMsgServerError, lastStatus, string(lastBody)))
		}
		return NewEmbeddingError(ErrCodeNetworkError, fmt.Sprintf("request failed: %v", lastErr))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return NewEmbeddingError(ErrCodeNetworkError, fmt.Sprintf("failed to read response: %v", err))
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return NewEmbeddingError(ErrCodeInvalidAPIKey, ErrMsgInvalidAPIKey)
	case resp.StatusCode == http.StatusTooManyRequests:
		return NewEmbeddingError(ErrCodeRateLimited, ErrMsgRateLimited)
	case resp.StatusCode >= 400:
		return NewEmbeddingError(ErrCodeInvalidRequest, fmt.Sprintf("%s: %s", ErrMsgInvalidRequest, string(body)))
	}

	if err := json.Unmarshal(body, respObj); err != nil {
		return NewEmbeddingError(ErrCodeServerError, fmt.Sprintf("failed to parse response: %v", err))
	}

	return nil
}

// isV3Model 判断是否为v3模型
func (c *TongyiClient) isV3Model() bool {
	return c.model == "text-embedding-v3"
}

// isValidDimension 检查v3模型的输出维度是否受支持
func isValidDimension(dim int) bool {
	switch dim {
	case 1024, 768, 512, 256, 128, 64:
		return true
	}
	return false
}

// 在包初始化时注册通义千问客户端
func init() {
	RegisterClient("tongyi", NewTongyiClient)
}
