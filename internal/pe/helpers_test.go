package pe

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

type testSection struct {
	name            string
	va              uint32
	vsize           uint32
	rawSize         uint32
	rawPtr          uint32
	characteristics uint32
}

type testImage struct {
	lfanew    uint32
	machine   uint16
	magic     uint16
	optSize   uint16
	entry     uint32
	imageBase uint32
	checksum  uint32
	sections  []testSection
}

// buildImage lays out a minimal PE32 image: DOS header, NT header at lfanew,
// section table after the optional header, and zero-filled space up to the
// end of the last section's raw data.
func buildImage(t *testing.T, ti testImage) []byte {
	t.Helper()

	if ti.lfanew == 0 {
		ti.lfanew = 0x80
	}
	if ti.machine == 0 {
		ti.machine = 0x14C
	}
	if ti.magic == 0 {
		ti.magic = MagicPE32
	}
	if ti.optSize == 0 {
		ti.optSize = 0xE0
	}

	tableOffset := int(ti.lfanew) + 0x18 + int(ti.optSize)
	size := tableOffset + len(ti.sections)*SectionHeaderSize
	for _, s := range ti.sections {
		if end := int(s.rawPtr) + int(s.rawSize); end > size {
			size = end
		}
	}

	data := make([]byte, size)
	data[0], data[1] = 'M', 'Z'
	binary.LittleEndian.PutUint32(data[0x3C:], ti.lfanew)

	nt := data[ti.lfanew:]
	copy(nt, "PE\x00\x00")
	binary.LittleEndian.PutUint16(nt[0x04:], ti.machine)
	binary.LittleEndian.PutUint16(nt[0x06:], uint16(len(ti.sections)))
	binary.LittleEndian.PutUint16(nt[0x14:], ti.optSize)
	binary.LittleEndian.PutUint16(nt[0x18:], ti.magic)
	binary.LittleEndian.PutUint32(nt[0x28:], ti.entry)
	binary.LittleEndian.PutUint32(nt[0x34:], ti.imageBase)
	binary.LittleEndian.PutUint32(nt[0x58:], ti.checksum)

	for i, s := range ti.sections {
		rec := data[tableOffset+i*SectionHeaderSize:]
		copy(rec[0:8], s.name)
		binary.LittleEndian.PutUint32(rec[0x08:], s.vsize)
		binary.LittleEndian.PutUint32(rec[0x0C:], s.va)
		binary.LittleEndian.PutUint32(rec[0x10:], s.rawSize)
		binary.LittleEndian.PutUint32(rec[0x14:], s.rawPtr)
		binary.LittleEndian.PutUint32(rec[0x24:], s.characteristics)
	}

	return data
}

// writeTempFile writes data to a file in a per-test temporary directory.
func writeTempFile(t *testing.T, data []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "image.exe")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// sampleImage is the single-section image used across tests:
// .text at RVA 0x1000, 0x2000 bytes, raw data at 0x400, image base 0x400000.
func sampleImage(t *testing.T) []byte {
	t.Helper()

	return buildImage(t, testImage{
		imageBase: 0x400000,
		entry:     0x1000,
		sections: []testSection{
			{name: ".text", va: 0x1000, vsize: 0x2000, rawSize: 0x2000, rawPtr: 0x400, characteristics: 0x60000020},
		},
	})
}
