package pe

import "encoding/binary"

// ChecksumInfo contains PE checksum verification results.
type ChecksumInfo struct {
	Stored   uint32
	Computed uint32
	Valid    bool
}

// VerifyChecksum recomputes the optional header checksum of img and compares
// it with the stored value. A stored value of zero means the image is not
// checksummed and is always reported valid.
func VerifyChecksum(f *File, img *Image) *ChecksumInfo {
	stored := f.NtHeader.CheckSum
	if stored == 0 {
		return &ChecksumInfo{Valid: true}
	}

	computed := ComputeChecksum(img, int64(f.DosHeader.Lfanew)+ntCheckSum)
	return &ChecksumInfo{
		Stored:   stored,
		Computed: computed,
		Valid:    stored == computed,
	}
}

// ComputeChecksum calculates the PE checksum of img, skipping the DWORD that
// holds the checksum field at checksumOffset. Pass -1 to skip nothing.
func ComputeChecksum(img *Image, checksumOffset int64) uint32 {
	data := img.data
	var checksum uint64
	var buf [4]byte

	// The field is skipped by aligned DWORD, as the loader computes it.
	skip := int64(-1)
	if checksumOffset >= 0 {
		skip = checksumOffset &^ 3
	}

	for offset := 0; offset < len(data); offset += 4 {
		if int64(offset) == skip {
			continue
		}

		// Pad a partial last DWORD with zeros.
		n := copy(buf[:], data[offset:])
		for i := n; i < 4; i++ {
			buf[i] = 0
		}

		checksum = (checksum & 0xFFFFFFFF) + uint64(binary.LittleEndian.Uint32(buf[:])) + (checksum >> 32)
		if checksum > 0xFFFFFFFF {
			checksum = (checksum & 0xFFFFFFFF) + (checksum >> 32)
		}
	}

	checksum = (checksum & 0xFFFF) + (checksum >> 16)
	checksum += checksum >> 16
	checksum &= 0xFFFF

	return uint32(checksum + uint64(len(data)))
}
