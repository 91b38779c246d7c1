package tags

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// STREAMINFO is always the first metadata block of a FLAC stream. The tag
// library does not expose audio properties, so the duration is read here
// from the raw block.

var errNotFlac = errors.New("not a FLAC stream")

const (
	flacMarker          = "fLaC"
	blockTypeStreamInfo = 0
	streamInfoLen       = 34
)

// flacDuration returns the stream duration in whole seconds, rounded.
// Streams with an unknown sample count report 0.
func flacDuration(r io.Reader) (int, error) {
	marker := make([]byte, 4)
	if _, err := io.ReadFull(r, marker); err != nil {
		return 0, fmt.Errorf("read marker: %w", err)
	}
	if string(marker) != flacMarker {
		return 0, errNotFlac
	}

	header := make([]byte, 4)
	if _, err := io.ReadFull(r, header); err != nil {
		return 0, fmt.Errorf("read block header: %w", err)
	}
	blockType := header[0] & 0x7F
	blockLen := int(header[1])<<16 | int(header[2])<<8 | int(header[3])
	if blockType != blockTypeStreamInfo || blockLen < streamInfoLen {
		return 0, fmt.Errorf("first block is not STREAMINFO (type %d, len %d)", blockType, blockLen)
	}

	info := make([]byte, streamInfoLen)
	if _, err := io.ReadFull(r, info); err != nil {
		return 0, fmt.Errorf("read STREAMINFO: %w", err)
	}

	// Bytes 10-17 pack: 20 bits sample rate, 3 bits channels-1,
	// 5 bits bits-per-sample-1, 36 bits total samples.
	sampleRate := uint32(info[10])<<12 | uint32(info[11])<<4 | uint32(info[12])>>4
	totalSamples := uint64(info[13]&0x0F)<<32 | uint64(binary.BigEndian.Uint32(info[14:18]))

	if sampleRate == 0 || totalSamples == 0 {
		return 0, nil
	}
	// Round to the nearest second.
	return int((totalSamples + uint64(sampleRate)/2) / uint64(sampleRate)), nil
}
