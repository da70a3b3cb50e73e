package cli

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseAddress converts a decimal or 0x-prefixed hexadecimal string to a
// 32-bit address.
func ParseAddress(s string) (uint32, error) {
	s = strings.TrimSpace(s)

	var (
		v   uint64
		err error
	)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err = strconv.ParseUint(s[2:], 16, 32)
	} else {
		v, err = strconv.ParseUint(s, 10, 32)
	}
	if err != nil {
		return 0, fmt.Errorf("地址格式错误: %q (应为十进制或0x前缀的十六进制，例如: 0x401000)", s)
	}
	return uint32(v), nil
}
