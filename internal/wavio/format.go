package wavio

import (
	"encoding/binary"
	"fmt"
	"io"
)

const (
	formatPCM        = 0x0001
	formatExtensible = 0xFFFE

	// Offset of the sub-format GUID's leading format code in an extensible
	// fmt chunk body.
	subFormatOffset  = 24
	extensibleFmtLen = 40
)

// audioFormat returns the format code of the fmt chunk in rs, resolving
// WAVE_FORMAT_EXTENSIBLE to the code carried in its sub-format GUID. rs is
// rewound to the start on success.
func audioFormat(rs io.ReadSeeker) (uint16, error) {
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return 0, fmt.Errorf("wavio: seek: %w", err)
	}

	var header [12]byte
	if _, err := io.ReadFull(rs, header[:]); err != nil {
		return 0, ErrInvalidFile
	}
	if string(header[0:4]) != "RIFF" || string(header[8:12]) != "WAVE" {
		return 0, ErrInvalidFile
	}

	for {
		var chunk [8]byte
		if _, err := io.ReadFull(rs, chunk[:]); err != nil {
			return 0, fmt.Errorf("%w: no fmt chunk", ErrInvalidFile)
		}
		size := int64(binary.LittleEndian.Uint32(chunk[4:]))

		if string(chunk[0:4]) != "fmt " {
			// Chunks are word aligned.
			if _, err := rs.Seek(size+size&1, io.SeekCurrent); err != nil {
				return 0, fmt.Errorf("%w: %w", ErrInvalidFile, err)
			}
			continue
		}

		if size < 16 {
			return 0, fmt.Errorf("%w: fmt chunk of %d bytes", ErrInvalidFile, size)
		}
		body := make([]byte, min(size, extensibleFmtLen))
		if _, err := io.ReadFull(rs, body); err != nil {
			return 0, fmt.Errorf("%w: truncated fmt chunk", ErrInvalidFile)
		}

		format := binary.LittleEndian.Uint16(body[0:2])
		if format == formatExtensible {
			if len(body) < extensibleFmtLen {
				return 0, fmt.Errorf("%w: extensible fmt chunk of %d bytes", ErrInvalidFile, size)
			}
			format = binary.LittleEndian.Uint16(body[subFormatOffset:])
		}

		if _, err := rs.Seek(0, io.SeekStart); err != nil {
			return 0, fmt.Errorf("wavio: seek: %w", err)
		}
		return format, nil
	}
}
