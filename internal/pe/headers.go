package pe

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Header layout of a 32-bit PE image. Offsets prefixed nt are relative to
// e_lfanew, offsets prefixed sec are relative to a section record.
const (
	dosLfanewField = 0x3C

	ntMachine              = 0x04
	ntNumberOfSections     = 0x06
	ntSizeOfOptionalHeader = 0x14
	ntOptionalHeader       = 0x18
	ntMagic                = 0x18
	ntAddressOfEntryPoint  = 0x28
	ntImageBase            = 0x34
	ntCheckSum             = 0x58

	// SectionHeaderSize is the size of one section table record.
	SectionHeaderSize = 40

	secVirtualSize      = 0x08
	secVirtualAddress   = 0x0C
	secSizeOfRawData    = 0x10
	secPointerToRawData = 0x14
	secCharacteristics  = 0x24
)

// Optional header magic values.
const (
	MagicPE32     uint16 = 0x10B
	MagicPE32Plus uint16 = 0x20B
)

var (
	dosSignature = [2]byte{'M', 'Z'}
	ntSignature  = [4]byte{'P', 'E', 0, 0}
)

// DosHeader holds the fields of the MS-DOS stub header needed to find the NT header.
type DosHeader struct {
	Magic  [2]byte
	Lfanew uint32
}

// NtHeader holds the PE signature, the COFF file header fields and the
// 32-bit optional header fields used by the translator and the analyzer.
type NtHeader struct {
	Signature            [4]byte
	Machine              uint16
	NumberOfSections     uint16
	SizeOfOptionalHeader uint16
	Magic                uint16
	AddressOfEntryPoint  uint32
	ImageBase            uint32
	CheckSum             uint32
}

// SectionHeader is one decoded 40-byte section table record.
type SectionHeader struct {
	Name             [8]byte
	VirtualSize      uint32
	VirtualAddress   uint32
	SizeOfRawData    uint32
	PointerToRawData uint32
	Characteristics  uint32
}

// NameString returns the section name without NUL padding.
func (s SectionHeader) NameString() string {
	if i := bytes.IndexByte(s.Name[:], 0); i >= 0 {
		return string(s.Name[:i])
	}
	return string(s.Name[:])
}

// SectionTable is the section table in file order.
type SectionTable []SectionHeader

// ReadDosHeader decodes the DOS header at offset 0.
func ReadDosHeader(img *Image) (DosHeader, error) {
	var h DosHeader

	magic, err := img.Slice(0, 2)
	if err != nil {
		return h, fmt.Errorf("读取DOS头失败: %w", err)
	}
	copy(h.Magic[:], magic)

	if h.Magic != dosSignature {
		if h.Magic == [2]byte{'Z', 'M'} {
			return h, fmt.Errorf("%w: 可能是ZM可执行文件 (不是PE文件)", ErrInvalidFormat)
		}
		return h, fmt.Errorf("%w: 未找到DOS头签名 MZ (实际: 0x%02X 0x%02X)", ErrInvalidFormat, h.Magic[0], h.Magic[1])
	}

	h.Lfanew, err = img.Uint32(dosLfanewField)
	if err != nil {
		return h, fmt.Errorf("读取e_lfanew失败: %w", err)
	}
	return h, nil
}

// ReadNtHeader decodes the NT header located at lfanew. Only PE32 images
// are accepted; PE32+ fails with ErrUnsupportedImage.
func ReadNtHeader(img *Image, lfanew uint32) (NtHeader, error) {
	var h NtHeader
	base := uint64(lfanew)

	sig, err := img.Slice(base, 4)
	if err != nil {
		return h, fmt.Errorf("读取PE签名失败: %w", err)
	}
	copy(h.Signature[:], sig)

	if h.Signature != ntSignature {
		switch string(h.Signature[:2]) {
		case "NE":
			return h, fmt.Errorf("%w: NT头签名无效 (可能是NE文件)", ErrInvalidFormat)
		case "LE":
			return h, fmt.Errorf("%w: NT头签名无效 (可能是LE文件)", ErrInvalidFormat)
		case "LX":
			return h, fmt.Errorf("%w: NT头签名无效 (可能是LX文件)", ErrInvalidFormat)
		}
		return h, fmt.Errorf("%w: NT头签名无效 (偏移 0x%X)", ErrInvalidFormat, lfanew)
	}

	if h.Machine, err = img.Uint16(base + ntMachine); err != nil {
		return h, fmt.Errorf("读取COFF头失败: %w", err)
	}
	if h.NumberOfSections, err = img.Uint16(base + ntNumberOfSections); err != nil {
		return h, fmt.Errorf("读取COFF头失败: %w", err)
	}
	if h.SizeOfOptionalHeader, err = img.Uint16(base + ntSizeOfOptionalHeader); err != nil {
		return h, fmt.Errorf("读取COFF头失败: %w", err)
	}

	if h.Magic, err = img.Uint16(base + ntMagic); err != nil {
		return h, fmt.Errorf("读取可选头失败: %w", err)
	}
	switch h.Magic {
	case MagicPE32:
	case MagicPE32Plus:
		return h, fmt.Errorf("%w: PE32+ (64位) 映像", ErrUnsupportedImage)
	default:
		return h, fmt.Errorf("%w: 可选头魔数无效 0x%X", ErrInvalidFormat, h.Magic)
	}

	if h.AddressOfEntryPoint, err = img.Uint32(base + ntAddressOfEntryPoint); err != nil {
		return h, fmt.Errorf("读取可选头失败: %w", err)
	}
	if h.ImageBase, err = img.Uint32(base + ntImageBase); err != nil {
		return h, fmt.Errorf("读取可选头失败: %w", err)
	}
	if h.CheckSum, err = img.Uint32(base + ntCheckSum); err != nil {
		return h, fmt.Errorf("读取可选头失败: %w", err)
	}

	return h, nil
}

// ReadSectionTable decodes n consecutive section records starting at tableOffset.
func ReadSectionTable(img *Image, tableOffset uint64, n uint16) (SectionTable, error) {
	if n == 0 {
		return SectionTable{}, nil
	}

	// Check the whole extent up front so a truncated table never yields a partial result.
	if _, err := img.Slice(tableOffset, uint64(n)*SectionHeaderSize); err != nil {
		return nil, fmt.Errorf("读取节区表失败 (%d 个节区): %w", n, err)
	}

	sections := make(SectionTable, 0, n)
	for i := uint64(0); i < uint64(n); i++ {
		rec, err := img.Slice(tableOffset+i*SectionHeaderSize, SectionHeaderSize)
		if err != nil {
			return nil, fmt.Errorf("读取节区头 %d 失败: %w", i, err)
		}
		sections = append(sections, decodeSection(rec))
	}
	return sections, nil
}

func decodeSection(rec []byte) SectionHeader {
	var s SectionHeader
	copy(s.Name[:], rec[0:8])
	s.VirtualSize = binary.LittleEndian.Uint32(rec[secVirtualSize:])
	s.VirtualAddress = binary.LittleEndian.Uint32(rec[secVirtualAddress:])
	s.SizeOfRawData = binary.LittleEndian.Uint32(rec[secSizeOfRawData:])
	s.PointerToRawData = binary.LittleEndian.Uint32(rec[secPointerToRawData:])
	s.Characteristics = binary.LittleEndian.Uint32(rec[secCharacteristics:])
	return s
}

// File is the parsed view of a 32-bit PE image.
type File struct {
	DosHeader          DosHeader
	NtHeader           NtHeader
	Sections           SectionTable
	SectionTableOffset uint64
}

// Parse decodes the DOS header, NT header and section table of data.
// data is only borrowed; the returned File does not reference it.
func Parse(data []byte) (*File, error) {
	img := NewImage(data)

	dos, err := ReadDosHeader(img)
	if err != nil {
		return nil, err
	}

	nt, err := ReadNtHeader(img, dos.Lfanew)
	if err != nil {
		return nil, err
	}

	tableOffset := uint64(dos.Lfanew) + ntOptionalHeader + uint64(nt.SizeOfOptionalHeader)
	sections, err := ReadSectionTable(img, tableOffset, nt.NumberOfSections)
	if err != nil {
		return nil, err
	}

	return &File{
		DosHeader:          dos,
		NtHeader:           nt,
		Sections:           sections,
		SectionTableOffset: tableOffset,
	}, nil
}

// ImageBase returns the preferred load address from the optional header.
func (f *File) ImageBase() uint32 {
	return f.NtHeader.ImageBase
}
