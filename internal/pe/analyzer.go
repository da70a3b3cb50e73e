package pe

import (
	"debug/pe"
	"fmt"
)

// Info contains analyzed PE file information.
type Info struct {
	FilePath     string
	FileSize     int64
	Architecture string
	EntryPoint   uint32
	ImageBase    uint32
	Checksum     *ChecksumInfo
	Sections     []SectionInfo
}

// SectionInfo contains information about a PE section.
type SectionInfo struct {
	Name             string
	VirtualAddress   uint32
	VirtualSize      uint32
	Size             uint32
	PointerToRawData uint32
	Characteristics  uint32
	Permissions      string
	Entropy          float64
}

// Analyzer extracts information from PE files.
type Analyzer struct {
	reader *Reader
}

// NewAnalyzer creates a new analyzer for the given reader.
func NewAnalyzer(r *Reader) *Analyzer {
	return &Analyzer{reader: r}
}

// Analyze extracts all information from the PE file.
func (a *Analyzer) Analyze() (*Info, error) {
	f := a.reader.File()
	img := a.reader.Image()

	info := &Info{
		FilePath:     a.reader.FilePath(),
		FileSize:     a.reader.FileSize(),
		Architecture: getArchitecture(f.NtHeader.Machine),
		EntryPoint:   f.NtHeader.AddressOfEntryPoint,
		ImageBase:    f.NtHeader.ImageBase,
		Checksum:     VerifyChecksum(f, img),
	}

	for _, section := range f.Sections {
		info.Sections = append(info.Sections, SectionInfo{
			Name:             section.NameString(),
			VirtualAddress:   section.VirtualAddress,
			VirtualSize:      section.VirtualSize,
			Size:             section.SizeOfRawData,
			PointerToRawData: section.PointerToRawData,
			Characteristics:  section.Characteristics,
			Permissions:      getSectionPermissions(section.Characteristics),
			Entropy:          CalculateSectionEntropy(img, section),
		})
	}

	return info, nil
}

func getArchitecture(machine uint16) string {
	switch machine {
	case pe.IMAGE_FILE_MACHINE_I386:
		return "x86 (32位)"
	case pe.IMAGE_FILE_MACHINE_AMD64:
		return "x64 (64位)"
	case pe.IMAGE_FILE_MACHINE_ARM, pe.IMAGE_FILE_MACHINE_ARMNT:
		return "ARM"
	case pe.IMAGE_FILE_MACHINE_ARM64:
		return "ARM64"
	default:
		return fmt.Sprintf("未知 (0x%X)", machine)
	}
}

func getSectionPermissions(c uint32) string {
	perms := [3]rune{'-', '-', '-'}

	if c&pe.IMAGE_SCN_MEM_READ != 0 {
		perms[0] = 'R'
	}
	if c&pe.IMAGE_SCN_MEM_WRITE != 0 {
		perms[1] = 'W'
	}
	if c&pe.IMAGE_SCN_MEM_EXECUTE != 0 {
		perms[2] = 'X'
	}

	return string(perms[:])
}
