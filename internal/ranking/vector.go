package ranking

import (
	"errors"
	"fmt"
	"math"
)

// 常用错误定义
var (
	ErrEmptyVector      = errors.New("empty vector")
	ErrInvalidDimension = errors.New("vector dimension mismatch")
)

// CosineSimilarity 计算两个向量的余弦相似度
// 返回值范围[-1,1]，零向量的相似度定义为0
func CosineSimilarity(v1, v2 []float32) (float32, error) {
	if len(v1) == 0 || len(v2) == 0 {
		return 0, ErrEmptyVector
	}
	if len(v1) != len(v2) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrInvalidDimension, len(v1), len(v2))
	}

	dot := dotProduct(v1, v2)
	norm1 := vectorNorm(v1)
	norm2 := vectorNorm(v2)

	if norm1 == 0 || norm2 == 0 {
		return 0, nil
	}

	similarity := dot / (norm1 * norm2)

	// 处理浮点精度问题
	if similarity > 1.0 {
		similarity = 1.0
	}
	if similarity < -1.0 {
		similarity = -1.0
	}

	return similarity, nil
}

// dotProduct 计算两个向量的点积
func dotProduct(v1, v2 []float32) float32 {
	var dot float32
	for i := 0; i < len(v1); i++ {
		dot += v1[i] * v2[i]
	}
	return dot
}

// vectorNorm 计算向量的L2范数
func vectorNorm(v []float32) float32 {
	var sum float32
	for _, val := range v {
		sum += val * val
	}
	return float32(math.Sqrt(float64(sum)))
}

// ValidateVector 验证向量维度和有效性
func ValidateVector(vector []float32, expectedDim int) error {
	if len(vector) == 0 {
		return ErrEmptyVector
	}

	if expectedDim > 0 && len(vector) != expectedDim {
		return fmt.Errorf("%w: expected %d, got %d", ErrInvalidDimension, expectedDim, len(vector))
	}

	return nil
}
