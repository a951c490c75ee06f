package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	insightconfig "github.com/fyerfyer/doc-insight-system/config"
	"github.com/fyerfyer/doc-insight-system/internal/document"
	"github.com/fyerfyer/doc-insight-system/internal/embedding"
	"github.com/fyerfyer/doc-insight-system/internal/ranking"
	"github.com/fyerfyer/doc-insight-system/internal/services"
	"github.com/fyerfyer/doc-insight-system/pkg/storage"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// 命令行选项
type cliOptions struct {
	ConfigFile  string // 配置文件路径
	InputFile   string // 输入清单路径
	OutputFile  string // 输出文件路径
	Folder      string // 文档文件夹路径（覆盖配置文件）
	Role        string // 使用者角色
	Task        string // 要完成的任务
	Description string // 项目描述
	Setup       bool   // 交互式生成input.json后退出
	LogLevel    string // 日志级别（覆盖配置文件）
}

func main() {
	opts := parseFlags()

	// 加载配置
	cfg, err := insightconfig.Load(opts.ConfigFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	applyOverrides(cfg, opts)

	// 初始化日志
	logger := setupLogger(cfg.Log)
	logger.Info("Starting document insight analysis...")

	// 创建文档来源
	docs, err := storage.NewLocalStorage(storage.LocalConfig{
		Path:       cfg.Documents.Folder,
		Extensions: document.SupportedExtensions(),
	})
	if err != nil {
		logger.Fatalf("Failed to open document folder: %v", err)
	}

	// 交互式生成输入清单
	if opts.Setup {
		if err := runSetup(docs, opts); err != nil {
			logger.Fatalf("Setup failed: %v", err)
		}
		logger.Infof("Setup complete, input manifest written to %s", opts.InputFile)
		return
	}

	// 加载或生成输入清单
	input, err := loadOrGenerateInput(docs, opts)
	if err != nil {
		logger.Fatalf("Failed to prepare input manifest: %v", err)
	}

	logger.WithFields(logrus.Fields{
		"role":      input.Persona.Role,
		"task":      input.JobToBeDone.Task,
		"documents": len(input.Documents),
	}).Info("Input manifest ready")

	// 创建嵌入客户端
	embedder, err := setupEmbedding(cfg)
	if err != nil {
		logger.Fatalf("Failed to initialize embedding client: %v", err)
	}

	// 创建文档分节器
	segmenter := document.NewSectionSegmenter(document.SegmenterConfig{
		MinSectionLength:  cfg.Segmenter.MinSectionLength,
		MaxHeadingLength:  cfg.Segmenter.MaxHeadingLength,
		MaxHeadingWords:   cfg.Segmenter.MaxHeadingWords,
		SectionSizeBudget: cfg.Segmenter.SectionSizeBudget,
	})

	// 创建相关性排序器
	ranker := ranking.NewRanker(embedder,
		ranking.WithTopN(cfg.Ranking.TopNSections),
		ranking.WithMinSimilarity(cfg.Ranking.MinSimilarityThreshold),
		ranking.WithEmbedTextLimit(cfg.Ranking.EmbedTextLimit),
		ranking.WithMaxRefinedLength(cfg.Ranking.MaxRefinedTextLength),
		ranking.WithLogger(logger),
	)

	// 创建分析服务并执行
	analyzer := services.NewAnalyzeService(docs, segmenter, ranker,
		services.WithLogger(logger),
	)

	result, err := analyzer.Analyze(context.Background(), input)
	if err != nil {
		logger.Fatalf("Analysis failed: %v", err)
	}

	// 写出结果
	if err := result.Save(opts.OutputFile); err != nil {
		logger.Fatalf("Failed to write output: %v", err)
	}
	logger.Infof("Output saved to %s", opts.OutputFile)

	printSummary(os.Stdout, result)
}

// parseFlags 解析命令行参数
func parseFlags() cliOptions {
	opts := cliOptions{}

	flag.StringVar(&opts.ConfigFile, "config", "", "Path to config file")
	flag.StringVar(&opts.InputFile, "input", "input.json", "Path to input manifest")
	flag.StringVar(&opts.OutputFile, "output", "output.json", "Path to output file")
	flag.StringVar(&opts.Folder, "folder", "", "Document folder (overrides config)")
	flag.StringVar(&opts.Role, "role", "", "Your role, e.g. Travel Planner")
	flag.StringVar(&opts.Task, "task", "", "Task to find relevant sections for")
	flag.StringVar(&opts.Description, "description", "", "Project description")
	flag.BoolVar(&opts.Setup, "setup", false, "Interactively create the input manifest and exit")
	flag.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug/info/warn/error)")

	flag.Parse()
	return opts
}

// applyOverrides 用命令行参数覆盖配置文件中的值
func applyOverrides(cfg *insightconfig.Config, opts cliOptions) {
	if opts.Folder != "" {
		cfg.Documents.Folder = opts.Folder
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}

	// API密钥优先从环境变量获取
	if key := os.Getenv("TONGYI_API_KEY"); key != "" {
		cfg.Embed.APIKey = key
	}
	if key := os.Getenv("EMBEDDING_API_KEY"); key != "" {
		cfg.Embed.APIKey = key
	}
}

// setupLogger 设置日志系统
func setupLogger(cfg insightconfig.LogConfig) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
	})

	switch cfg.Level {
	case "debug":
		logger.SetLevel(logrus.DebugLevel)
	case "info":
		logger.SetLevel(logrus.InfoLevel)
	case "warn":
		logger.SetLevel(logrus.WarnLevel)
	case "error":
		logger.SetLevel(logrus.ErrorLevel)
	default:
		logger.SetLevel(logrus.InfoLevel)
	}

	// 配置了日志文件时按大小滚动
	if cfg.File != "" {
		logger.SetOutput(&lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    10, // MB
			MaxBackups: 3,
			MaxAge:     7, // days
		})
	}

	return logger
}

// setupEmbedding 创建嵌入客户端
func setupEmbedding(cfg *insightconfig.Config) (embedding.Client, error) {
	return embedding.NewClient(cfg.Embed.Provider,
		embedding.WithAPIKey(cfg.Embed.APIKey),
		embedding.WithModel(cfg.Embed.Model),
		embedding.WithBaseURL(cfg.Embed.Endpoint),
		embedding.WithDimensions(cfg.Embed.Dimensions),
		embedding.WithCacheTTL(time.Duration(cfg.Embed.CacheTTL)*time.Second),
	)
}

// loadOrGenerateInput 加载输入清单，文件不存在时扫描文档文件夹生成
func loadOrGenerateInput(docs storage.Storage, opts cliOptions) (*services.InputManifest, error) {
	if _, err := os.Stat(opts.InputFile); err == nil {
		return services.LoadInputManifest(opts.InputFile)
	}

	return services.GenerateInputManifest(docs, opts.Role, opts.Task, opts.Description)
}

// runSetup 交互式收集角色和任务，生成input.json
func runSetup(docs storage.Storage, opts cliOptions) error {
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("PDF Document Analyzer - Interactive Setup")
	fmt.Println()

	fmt.Println("What is your role?")
	fmt.Println("Examples: Travel Planner, Research Scientist, Legal Analyst, Software Developer")
	role := prompt(reader, "Your role: ")

	fmt.Println()
	fmt.Println("What do you want to find or analyze in your documents?")
	fmt.Println("Examples:")
	fmt.Println("  - Plan a 7-day vacation for a family of 4")
	fmt.Println("  - Find best practices for API development")
	fmt.Println("  - Locate compliance requirements")
	task := prompt(reader, "Your task/question: ")

	fmt.Println()
	description := prompt(reader, "Project description (optional): ")

	input, err := services.GenerateInputManifest(docs, role, task, description)
	if err != nil {
		return err
	}

	if err := input.Save(opts.InputFile); err != nil {
		return err
	}

	fmt.Printf("\nCreated %s with %d documents\n", opts.InputFile, len(input.Documents))
	return nil
}

// prompt 读取一行用户输入
func prompt(reader *bufio.Reader, label string) string {
	fmt.Print(label)
	line, err := reader.ReadString('\n')
	if err != nil {
		return ""
	}
	return strings.TrimSpace(line)
}

// printSummary 在标准输出打印排序结果摘要
func printSummary(w io.Writer, result *services.AnalysisResult) {
	if len(result.ExtractedSections) == 0 {
		fmt.Fprintln(w, "No relevant sections found.")
		return
	}

	fmt.Fprintf(w, "Top %d relevant sections:\n", len(result.ExtractedSections))
	for i, section := range result.ExtractedSections {
		fmt.Fprintf(w, "%d. [%s] %s (page %d, similarity %.4f)\n",
			section.ImportanceRank, section.Document, section.SectionTitle,
			section.PageNumber, section.Similarity)

		if i < len(result.SubsectionAnalysis) {
			text := result.SubsectionAnalysis[i].RefinedText
			if len(text) > 200 {
				text = text[:200] + "..."
			}
			fmt.Fprintf(w, "   %s\n", text)
		}
	}
}
