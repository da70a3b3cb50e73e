package pe

import "errors"

var (
	// ErrInvalidFormat is returned when the DOS or PE signature does not match.
	ErrInvalidFormat = errors.New("无效的PE格式")

	// ErrTruncatedImage is returned when a required byte range lies past the end of the image.
	ErrTruncatedImage = errors.New("PE映像被截断")

	// ErrMalformedSection is returned when a section's address range cannot be represented in 32 bits.
	ErrMalformedSection = errors.New("节区格式错误")

	// ErrAddressOutOfRange is returned when an RVA plus the image base does not fit in 32 bits.
	ErrAddressOutOfRange = errors.New("地址超出32位范围")

	// ErrUnsupportedImage is returned for PE32+ (64-bit) images.
	ErrUnsupportedImage = errors.New("不支持的PE映像")
)
