package utils

import (
	"fmt"
	"math"
)

// CheckMultiplyOverflow checks if multiplying two uint64 values would overflow.
// Returns an error if overflow would occur.
func CheckMultiplyOverflow(a, b uint64) error {
	if a == 0 || b == 0 {
		return nil // No overflow when either is zero
	}

	if a > math.MaxUint64/b {
		return fmt.Errorf("multiplication overflow: %d * %d exceeds uint64 max", a, b)
	}

	return nil
}

// SafeMultiply multiplies two uint64 values and returns the result if no overflow occurs.
// Returns 0 and an error if overflow would occur.
func SafeMultiply(a, b uint64) (uint64, error) {
	if err := CheckMultiplyOverflow(a, b); err != nil {
		return 0, err
	}
	return a * b, nil
}

// ValidateBufferSize validates that a buffer size is within reasonable limits.
// maxSize parameter allows different limits for different use cases.
func ValidateBufferSize(size, maxSize uint64, description string) error {
	if size == 0 {
		return fmt.Errorf("%s: size cannot be zero", description)
	}

	if size > maxSize {
		return fmt.Errorf("%s: size %d exceeds maximum %d", description, size, maxSize)
	}

	return nil
}

// Common buffer size limits used to reject corrupt headers before they are
// used to justify a large allocation or an out-of-bounds slice.
const (
	// MaxFileSize limits a single BND4 embedded file to 1GB.
	MaxFileSize = 1024 * 1024 * 1024 // 1GB

	// MaxDecompressedSize limits a single DCX/DCP payload to 512MB.
	MaxDecompressedSize = 512 * 1024 * 1024 // 512MB

	// MaxRowCount limits a single PARAM table to 1 million rows.
	MaxRowCount = 1_000_000

	// MaxStringSize limits a NUL-terminated string read to 16MB.
	MaxStringSize = 16 * 1024 * 1024
)

// ValidateEdgeChunkGeometry checks the `EgdT` sub-header invariant from the
// DCX EDGE codec: egdt_size must equal 0x20 + 16*chunk_count. Guards the
// chunk_count multiplication against overflow before it is used to size
// anything.
func ValidateEdgeChunkGeometry(egdtSize, chunkCount uint32) error {
	span, err := SafeMultiply(uint64(chunkCount), 16)
	if err != nil {
		return fmt.Errorf("edge chunk geometry: %w", err)
	}
	want := uint64(0x20) + span
	if uint64(egdtSize) != want {
		return fmt.Errorf("edge chunk geometry: egdt_size %d != 0x20 + 16*chunk_count (%d)", egdtSize, want)
	}
	return nil
}

// ValidateRowSpan checks that a PARAM row's byte span (offset, width) lies
// entirely within a buffer of the given length.
func ValidateRowSpan(bufLen, offset, width uint64) error {
	if offset > math.MaxUint64-width {
		return fmt.Errorf("row span overflow: offset %d + width %d", offset, width)
	}
	if end := offset + width; end > bufLen {
		return fmt.Errorf("row span out of bounds: offset %d width %d exceeds buffer length %d", offset, width, bufLen)
	}
	return nil
}
