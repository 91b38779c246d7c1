package tags

import (
	"bytes"
	"encoding/binary"
)

// Helpers that assemble a minimal valid FLAC stream for tests: a STREAMINFO
// block, a Vorbis comment block, and optionally a picture block.

type flacBuilder struct {
	comments [][2]string
	picture  []byte
	picMIME  string

	sampleRate   uint32
	totalSamples uint64
}

func newFlacBuilder() *flacBuilder {
	return &flacBuilder{
		sampleRate:   44100,
		totalSamples: 44100 * 125, // 125 seconds
	}
}

func (b *flacBuilder) comment(key, value string) *flacBuilder {
	b.comments = append(b.comments, [2]string{key, value})
	return b
}

func (b *flacBuilder) withPicture(mime string, data []byte) *flacBuilder {
	b.picMIME = mime
	b.picture = data
	return b
}

func (b *flacBuilder) build() []byte {
	var out bytes.Buffer
	out.WriteString("fLaC")

	blocks := [][2]any{{byte(0), b.streamInfo()}, {byte(4), b.vorbisComment()}}
	if b.picture != nil {
		blocks = append(blocks, [2]any{byte(6), b.pictureBlock()})
	}

	for i, blk := range blocks {
		typ := blk[0].(byte)
		payload := blk[1].([]byte)
		if i == len(blocks)-1 {
			typ |= 0x80 // last-metadata-block flag
		}
		out.WriteByte(typ)
		out.WriteByte(byte(len(payload) >> 16))
		out.WriteByte(byte(len(payload) >> 8))
		out.WriteByte(byte(len(payload)))
		out.Write(payload)
	}
	return out.Bytes()
}

func (b *flacBuilder) streamInfo() []byte {
	info := make([]byte, 34)
	binary.BigEndian.PutUint16(info[0:2], 4096) // min block size
	binary.BigEndian.PutUint16(info[2:4], 4096) // max block size

	sr := b.sampleRate
	info[10] = byte(sr >> 12)
	info[11] = byte(sr >> 4)
	// low 4 bits of sample rate, 3 bits channels-1 (stereo), high bit of bps-1 (16 bit)
	info[12] = byte(sr&0x0F)<<4 | (2-1)<<1
	info[13] = byte(15<<4) | byte(b.totalSamples>>32&0x0F)
	binary.BigEndian.PutUint32(info[14:18], uint32(b.totalSamples))
	return info
}

func (b *flacBuilder) vorbisComment() []byte {
	var buf bytes.Buffer
	writeLE := func(n uint32) {
		var tmp [4]byte
		binary.LittleEndian.PutUint32(tmp[:], n)
		buf.Write(tmp[:])
	}

	vendor := "muza test encoder"
	writeLE(uint32(len(vendor)))
	buf.WriteString(vendor)
	writeLE(uint32(len(b.comments)))
	for _, c := range b.comments {
		line := c[0] + "=" + c[1]
		writeLE(uint32(len(line)))
		buf.WriteString(line)
	}
	return buf.Bytes()
}

func (b *flacBuilder) pictureBlock() []byte {
	var buf bytes.Buffer
	writeBE := func(n uint32) {
		var tmp [4]byte
		binary.BigEndian.PutUint32(tmp[:], n)
		buf.Write(tmp[:])
	}

	writeBE(3) // front cover
	writeBE(uint32(len(b.picMIME)))
	buf.WriteString(b.picMIME)
	writeBE(0) // description length
	writeBE(600)
	writeBE(600)
	writeBE(24)
	writeBE(0)
	writeBE(uint32(len(b.picture)))
	buf.Write(b.picture)
	return buf.Bytes()
}
