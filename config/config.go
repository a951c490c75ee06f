package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 应用程序配置结构体
// Load返回后不再修改，各组件在构造时拿到自己需要的值
type Config struct {
	Documents DocumentsConfig `mapstructure:"documents"`
	Segmenter SegmenterConfig `mapstructure:"segmenter"`
	Embed     EmbedConfig     `mapstructure:"embed"`
	Ranking   RankingConfig   `mapstructure:"ranking"`
	Log       LogConfig       `mapstructure:"log"`
}

// DocumentsConfig 文档来源配置
type DocumentsConfig struct {
	Folder string `mapstructure:"folder" validate:"required"` // 文档文件夹路径
}

// SegmenterConfig 分节器配置
type SegmenterConfig struct {
	MinSectionLength  int `mapstructure:"min_section_length" validate:"gte=1"`  // 节正文最小字符数
	MaxHeadingLength  int `mapstructure:"max_heading_length" validate:"gte=1"`  // 标题行最大字符数
	MaxHeadingWords   int `mapstructure:"max_heading_words" validate:"gte=1"`   // 标题最大词数
	SectionSizeBudget int `mapstructure:"section_size_budget" validate:"gte=1"` // 单节长度预算
}

// EmbedConfig 向量嵌入模型配置
type EmbedConfig struct {
	Provider   string `mapstructure:"provider" validate:"required"` // 提供商，如tongyi
	Model      string `mapstructure:"model"`                        // 模型名称，透传给提供商
	APIKey     string `mapstructure:"api_key"`                      // API密钥
	Endpoint   string `mapstructure:"endpoint"`                     // API端点
	Dimensions int    `mapstructure:"dimensions" validate:"gte=1"`  // 向量维度
	CacheTTL   int    `mapstructure:"cache_ttl" validate:"gte=0"`   // 向量缓存有效期（秒）
}

// RankingConfig 相关性排序配置
type RankingConfig struct {
	TopNSections           int     `mapstructure:"top_n_sections" validate:"gte=1"`                     // 最多返回的节数
	MinSimilarityThreshold float32 `mapstructure:"min_similarity_threshold" validate:"gte=-1,lte=1"`    // 最低余弦相似度
	EmbedTextLimit         int     `mapstructure:"embed_text_limit" validate:"gte=1"`                   // 参与嵌入的正文前缀长度
	MaxRefinedTextLength   int     `mapstructure:"max_refined_text_length" validate:"gte=1"`            // 展示文本的最大字符数
}

// LogConfig 日志配置
type LogConfig struct {
	Level string `mapstructure:"level"` // 日志级别
	File  string `mapstructure:"file"`  // 日志文件路径，空时输出到标准输出
}

// Load 从文件和环境变量加载配置
// 配置值非法时在任何处理开始前返回错误
func Load(configPath string) (*Config, error) {
	// 加载.env文件（不存在时忽略）
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %v", err)
		}
	}

	// 支持环境变量覆盖，如DOCINSIGHT_EMBED_API_KEY
	v.SetEnvPrefix("docinsight")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %v", err)
	}

	if err := Validate(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate 校验配置值是否在合理范围内
func Validate(cfg *Config) error {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %v", err)
	}
	return nil
}

// setDefaults 设置配置的默认值
func setDefaults(v *viper.Viper) {
	// 文档来源默认配置
	v.SetDefault("documents.folder", "./pdfs")

	// 分节器默认配置
	v.SetDefault("segmenter.min_section_length", 50)
	v.SetDefault("segmenter.max_heading_length", 200)
	v.SetDefault("segmenter.max_heading_words", 10)
	v.SetDefault("segmenter.section_size_budget", 2000)

	// 嵌入模型默认配置
	// api_key和endpoint需要默认值，否则viper的环境变量覆盖不生效
	v.SetDefault("embed.provider", "tongyi")
	v.SetDefault("embed.model", "text-embedding-v1")
	v.SetDefault("embed.api_key", "")
	v.SetDefault("embed.endpoint", "")
	v.SetDefault("embed.dimensions", 1024)
	v.SetDefault("embed.cache_ttl", 3600) // 1小时

	// 排序默认配置
	v.SetDefault("ranking.top_n_sections", 5)
	v.SetDefault("ranking.min_similarity_threshold", 0.1)
	v.SetDefault("ranking.embed_text_limit", 512)
	v.SetDefault("ranking.max_refined_text_length", 1000)

	// 日志默认配置
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
}
