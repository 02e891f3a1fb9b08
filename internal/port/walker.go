package port

// FileWalker finds the .fng sources under a root directory.
type FileWalker interface {
	Walk(root string) ([]FileInfo, error)
}

type FileInfo struct {
	Path    string // absolute
	RelPath string // slash-separated, relative to the walked root
	ModTime int64
	Size    int64
}

type FileReader interface {
	ReadFile(path string) ([]byte, error)
}
