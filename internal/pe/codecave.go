package pe

import "fmt"

// CodeCave represents a run of padding bytes inside a section's raw data.
type CodeCave struct {
	Section  string // Section name.
	Offset   uint32 // File offset.
	RVA      uint32 // Relative Virtual Address.
	Size     uint32 // Available size in bytes.
	FillByte byte   // Fill pattern (0x00 or 0xCC).
}

// CodeCaveDetector finds code caves in PE files.
type CodeCaveDetector struct {
	img  *Image
	file *File
}

// NewCodeCaveDetector creates a new code cave detector.
func NewCodeCaveDetector(img *Image, f *File) *CodeCaveDetector {
	return &CodeCaveDetector{
		img:  img,
		file: f,
	}
}

// FindCodeCaves searches all sections for runs of at least minSize bytes
// of 0x00 or 0xCC. Raw data past the end of the file is not scanned.
func (d *CodeCaveDetector) FindCodeCaves(minSize uint32) ([]CodeCave, error) {
	if minSize == 0 {
		return nil, fmt.Errorf("code cave最小大小必须大于0")
	}

	var caves []CodeCave
	for _, section := range d.file.Sections {
		caves = append(caves, d.findInSection(section, minSize)...)
	}
	return caves, nil
}

func (d *CodeCaveDetector) findInSection(section SectionHeader, minSize uint32) []CodeCave {
	data := d.img.Tail(uint64(section.PointerToRawData), uint64(section.SizeOfRawData))

	var caves []CodeCave
	caveStart := -1
	var fillByte byte

	for i, b := range data {
		if b != 0x00 && b != 0xCC {
			if caveStart != -1 && uint32(i-caveStart) >= minSize {
				caves = append(caves, newCodeCave(section, caveStart, i, fillByte))
			}
			caveStart = -1
			continue
		}

		if caveStart == -1 {
			caveStart, fillByte = i, b
		} else if b != fillByte {
			if uint32(i-caveStart) >= minSize {
				caves = append(caves, newCodeCave(section, caveStart, i, fillByte))
			}
			caveStart, fillByte = i, b
		}
	}

	if caveStart != -1 && uint32(len(data)-caveStart) >= minSize {
		caves = append(caves, newCodeCave(section, caveStart, len(data), fillByte))
	}

	return caves
}

func newCodeCave(section SectionHeader, start, end int, fillByte byte) CodeCave {
	return CodeCave{
		Section:  section.NameString(),
		Offset:   section.PointerToRawData + uint32(start),
		RVA:      section.VirtualAddress + uint32(start),
		Size:     uint32(end - start),
		FillByte: fillByte,
	}
}
