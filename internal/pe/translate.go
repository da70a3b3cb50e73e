package pe

import (
	"errors"
	"fmt"
	"math"
)

// Result is the outcome of translating one virtual address.
// When Mapped is false the address is not backed by any section and
// FileOffset and Section carry no meaning.
type Result struct {
	VirtualAddress uint32
	FileOffset     uint32
	Mapped         bool
	Section        int // Index into the section table of the matching section.
}

// sectionRange returns the absolute [start, end) range of s in 64-bit
// arithmetic so neither bound can wrap.
func sectionRange(imageBase uint32, s SectionHeader) (start, end uint64) {
	start = uint64(imageBase) + uint64(s.VirtualAddress)
	end = start + uint64(s.VirtualSize)
	return start, end
}

// Translate maps va to a file offset using the first section, in table
// order, whose range strictly contains it: start < va < end. An address on
// either boundary is reported as unmapped.
//
// Section ranges running past the 32-bit address space are not wrapped.
// If the first matching section would produce a file offset that does not
// fit in 32 bits, Translate fails with ErrMalformedSection.
func Translate(imageBase uint32, sections SectionTable, va uint32) (Result, error) {
	target := uint64(va)

	for i, s := range sections {
		start, end := sectionRange(imageBase, s)
		if !(start < target && target < end) {
			continue
		}

		offset := uint64(s.PointerToRawData) + (target - start)
		if offset > math.MaxUint32 {
			return Result{}, fmt.Errorf("%w: 节区 %d (%s) 的文件偏移溢出 (0x%X)",
				ErrMalformedSection, i, s.NameString(), offset)
		}

		return Result{
			VirtualAddress: va,
			FileOffset:     uint32(offset),
			Mapped:         true,
			Section:        i,
		}, nil
	}

	return Result{VirtualAddress: va, Section: -1}, nil
}

// Validate reports every section whose virtual range extends past the
// 32-bit address space. Such sections still translate addresses that lie
// inside them; the error is informational.
func (t SectionTable) Validate(imageBase uint32) error {
	var errs []error
	for i, s := range t {
		_, end := sectionRange(imageBase, s)
		if end > math.MaxUint32+1 {
			errs = append(errs, fmt.Errorf("%w: 节区 %d (%s) 超出32位地址空间 (结束于 0x%X)",
				ErrMalformedSection, i, s.NameString(), end))
		}
	}
	return errors.Join(errs...)
}

// Translate maps a virtual address using the file's image base and section table.
func (f *File) Translate(va uint32) (Result, error) {
	return Translate(f.ImageBase(), f.Sections, va)
}

// TranslateRVA adds the image base to rva and translates the result.
func (f *File) TranslateRVA(rva uint32) (Result, error) {
	va := uint64(f.ImageBase()) + uint64(rva)
	if va > math.MaxUint32 {
		return Result{}, fmt.Errorf("%w: RVA 0x%X 加上镜像基址 0x%X 超出32位地址空间",
			ErrAddressOutOfRange, rva, f.ImageBase())
	}
	return f.Translate(uint32(va))
}
