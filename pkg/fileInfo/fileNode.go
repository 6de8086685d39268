package fileInfo

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// File is anything the upload pipeline can read: a file on disk, a dropped
// payload, or a fixture in tests.
type File interface {
	Name() string
	Open() (io.ReadCloser, error)
}

// FileNode describes a local file chosen by the operator.
type FileNode struct {
	FileName string `json:"name"`
	Size     int64  `json:"size"`
	MimeType string `json:"mime_type,omitempty"`
	Checksum string `json:"checksum,omitempty"`
	Path     string `json:"-"`
}

// CreateNode stats path and fills in size, MIME type and checksum.
// Directories are rejected since only a single list can be uploaded.
func CreateNode(path string) (FileNode, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileNode{}, err
	}
	if info.IsDir() {
		return FileNode{}, fmt.Errorf("%s is a directory", path)
	}
	node := FileNode{
		FileName: info.Name(),
		Size:     info.Size(),
		Path:     path,
	}
	mime, err := mimetype.DetectFile(path)
	if err != nil {
		node.MimeType = "application/octet-stream"
	} else {
		node.MimeType = mime.String()
	}
	if _, err := node.CalcChecksum(); err != nil {
		return FileNode{}, err
	}
	return node, nil
}

func (n FileNode) Name() string {
	return n.FileName
}

func (n FileNode) Open() (io.ReadCloser, error) {
	return os.Open(n.Path)
}

// MemoryFile is an in-memory File.
type MemoryFile struct {
	FileName string
	Data     []byte
}

func (m MemoryFile) Name() string {
	return m.FileName
}

func (m MemoryFile) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(m.Data)), nil
}

// HasExtension reports whether name ends with ext, ignoring case.
// ext may be given with or without the leading dot.
func HasExtension(name, ext string) bool {
	if ext == "" {
		return false
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return strings.EqualFold(filepath.Ext(name), ext)
}

var (
	_ File = FileNode{}
	_ File = MemoryFile{}
)
