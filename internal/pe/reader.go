// Package pe provides 32-bit PE header decoding and virtual address to file
// offset translation.
package pe

import (
	"fmt"
	"os"

	"github.com/edsrzf/mmap-go"
)

// Reader maps a PE file into memory read-only and holds its parsed headers.
type Reader struct {
	file     *File
	data     mmap.MMap
	filepath string
	filesize int64
}

// Open maps and parses a PE file for reading.
func Open(filepath string) (*Reader, error) {
	handle, err := os.Open(filepath)
	if err != nil {
		return nil, fmt.Errorf("打开PE文件失败: %w", err)
	}
	defer func() { _ = handle.Close() }()

	stat, err := handle.Stat()
	if err != nil {
		return nil, fmt.Errorf("获取文件信息失败: %w", err)
	}

	// Zero-length files cannot be mapped.
	if stat.Size() == 0 {
		return nil, fmt.Errorf("解析PE文件失败: %w: 文件为空", ErrTruncatedImage)
	}

	data, err := mmap.Map(handle, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("映射文件失败: %w", err)
	}

	f, err := Parse(data)
	if err != nil {
		_ = data.Unmap()
		return nil, fmt.Errorf("解析PE文件失败: %w", err)
	}

	return &Reader{
		file:     f,
		data:     data,
		filepath: filepath,
		filesize: stat.Size(),
	}, nil
}

// Close unmaps the file.
func (r *Reader) Close() error {
	if r.data == nil {
		return nil
	}
	err := r.data.Unmap()
	r.data = nil
	return err
}

// File returns the parsed headers.
func (r *Reader) File() *File {
	return r.file
}

// Image returns a bounds-checked view of the mapped bytes. It must not be
// used after Close.
func (r *Reader) Image() *Image {
	return NewImage(r.data)
}

// FilePath returns the file path.
func (r *Reader) FilePath() string {
	return r.filepath
}

// FileSize returns the file size in bytes.
func (r *Reader) FileSize() int64 {
	return r.filesize
}
