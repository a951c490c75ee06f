package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// LocalStorage 本地文件夹文档来源实现
type LocalStorage struct {
	basePath   string          // 文档文件夹路径
	extensions map[string]bool // 受支持的扩展名（小写）
}

// LocalConfig 本地来源配置
type LocalConfig struct {
	Path       string   // 文档文件夹路径
	Extensions []string // 受支持的扩展名，空时接受所有文件
}

// NewLocalStorage 创建本地文档来源实例
func NewLocalStorage(cfg LocalConfig) (*LocalStorage, error) {
	// 确保路径是绝对路径
	absPath, err := filepath.Abs(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path: %v", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open document folder: %v", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("document path is not a directory: %s", absPath)
	}

	extensions := make(map[string]bool, len(cfg.Extensions))
	for _, ext := range cfg.Extensions {
		extensions[strings.ToLower(ext)] = true
	}

	return &LocalStorage{
		basePath:   absPath,
		extensions: extensions,
	}, nil
}

// List 列出文件夹内所有受支持的文档，按文件名排序
func (s *LocalStorage) List() ([]FileInfo, error) {
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read document folder: %v", err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if len(s.extensions) > 0 && !s.extensions[ext] {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		files = append(files, FileInfo{
			Name: entry.Name(),
			Path: filepath.Join(s.basePath, entry.Name()),
			Size: info.Size(),
		})
	}

	// 按文件名排序，保证多次运行的文档顺序一致
	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})

	return files, nil
}

// Resolve 根据文件名返回绝对路径
func (s *LocalStorage) Resolve(name string) (string, error) {
	path := filepath.Join(s.basePath, filepath.Base(name))

	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("file not found: %s", name)
	}

	return path, nil
}

// Exists 检查文档是否存在
func (s *LocalStorage) Exists(name string) (bool, error) {
	path := filepath.Join(s.basePath, filepath.Base(name))

	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}
