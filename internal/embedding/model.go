package embedding

// DashScopeRequest DashScope嵌入API请求结构
type DashScopeRequest struct {
	Model      string                `json:"model"`                // 模型名称
	Input      DashScopeRequestInput `json:"input"`                // 输入文本
	Parameters *DashScopeParameters  `json:"parameters,omitempty"` // v3模型的附加参数
}

// DashScopeParameters v3模型的请求参数
type DashScopeParameters struct {
	Dimension  int    `json:"dimension,omitempty"`   // 输出向量维度
	OutputType string `json:"output_type,omitempty"` // 输出类型
}

// DashScopeRequestInput 请求输入
type DashScopeRequestInput struct {
	Texts []string `json:"texts"` // 需要嵌入的文本列表
}

// DashScopeResponse DashScope嵌入API响应结构
type DashScopeResponse struct {
	RequestID string          `json:"request_id"`        // 请求ID
	Code      string          `json:"code,omitempty"`    // 错误码，成功时为空
	Message   string          `json:"message,omitempty"` // 错误消息
	Output    DashScopeOutput `json:"output"`            // 输出结果
	Usage     DashScopeUsage  `json:"usage"`             // 资源使用情况
}

// DashScopeOutput 嵌入输出结果
type DashScopeOutput struct {
	Embeddings []DashScopeEmbedding `json:"embeddings"` // 嵌入向量列表
}

// DashScopeEmbedding 单条文本的嵌入结果
type DashScopeEmbedding struct {
	TextIndex int       `json:"text_index"` // 对应输入文本的下标
	Embedding []float32 `json:"embedding"`  // 嵌入向量
}

// DashScopeUsage 资源使用情况
type DashScopeUsage struct {
	TotalTokens int `json:"total_tokens"` // 使用的总token数
}
