package storage

// FileInfo 文件元数据结构
type FileInfo struct {
	Name string // 文件名
	Path string // 绝对路径(实现相关)
	Size int64  // 文件大小(字节)
}

// Storage 文档来源接口
// 定义文档集合的只读访问操作，可以有不同实现(本地文件夹等)
type Storage interface {
	// List 列出所有受支持的文档
	List() ([]FileInfo, error)

	// Resolve 根据文件名返回可读取的路径
	Resolve(name string) (string, error)

	// Exists 检查文档是否存在
	Exists(name string) (bool, error)
}

// Factory 存储实现的工厂函数
type Factory func(cfg interface{}) (Storage, error)
