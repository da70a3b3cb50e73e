package pe

import (
	"encoding/binary"
	"fmt"
)

// Image is a read-only view over the raw bytes of a PE file.
// Every accessor is bounds checked and fails with ErrTruncatedImage instead
// of reading past the end.
type Image struct {
	data []byte
}

// NewImage wraps data. The slice is borrowed, not copied.
func NewImage(data []byte) *Image {
	return &Image{data: data}
}

// Len returns the image length in bytes.
func (img *Image) Len() int {
	return len(img.data)
}

// Slice returns n bytes starting at offset.
func (img *Image) Slice(offset uint64, n uint64) ([]byte, error) {
	end := offset + n
	if end < offset || end > uint64(len(img.data)) {
		return nil, fmt.Errorf("%w: 需要 0x%X-0x%X, 文件大小 0x%X", ErrTruncatedImage, offset, end, len(img.data))
	}
	return img.data[offset:end], nil
}

// Uint16 reads a little-endian uint16 at offset.
func (img *Image) Uint16(offset uint64) (uint16, error) {
	b, err := img.Slice(offset, 2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// Uint32 reads a little-endian uint32 at offset.
func (img *Image) Uint32(offset uint64) (uint32, error) {
	b, err := img.Slice(offset, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// Tail returns at most n bytes starting at offset, clipped to the end of
// the image. An offset past the end yields an empty slice.
func (img *Image) Tail(offset uint64, n uint64) []byte {
	if offset >= uint64(len(img.data)) {
		return nil
	}
	end := offset + n
	if end < offset || end > uint64(len(img.data)) {
		end = uint64(len(img.data))
	}
	return img.data[offset:end]
}
