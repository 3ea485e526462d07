// ABOUTME: ICO container encoder and header parser
// ABOUTME: Encodes pixel buffers as PNG-in-ICO byte streams
package icon

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/png"

	"github.com/micmon/micmon-go/pkg/render"
)

const (
	// HeaderSize is the preamble plus the single directory entry
	HeaderSize = 22

	preambleSize = 6
	typeIcon     = 1
	colorPlanes  = 1
	bitCount     = 24
	maxDimension = 256
)

// ErrShortHeader is returned when parsing fewer than HeaderSize bytes
var ErrShortHeader = errors.New("icon header too short")

// Header mirrors the fields of a single-entry icon header
type Header struct {
	Reserved    uint16
	Type        uint16
	Count       uint16
	Width       uint8
	Height      uint8
	ColorCount  uint8
	EntryPad    uint8
	Planes      uint16
	BitCount    uint16
	BytesInRes  uint32
	ImageOffset uint32
}

// Encoder turns pixel buffers into icon bytes
type Encoder struct {
	png png.Encoder
}

// NewEncoder creates an encoder using the default PNG compression level
func NewEncoder() *Encoder {
	return &Encoder{}
}

// Encode PNG-compresses pb and wraps it in an icon container
func (e *Encoder) Encode(pb render.PixelBuffer) ([]byte, error) {
	return e.EncodeImage(pb.NRGBA())
}

// EncodeImage wraps any square image in an icon container
func (e *Encoder) EncodeImage(img image.Image) ([]byte, error) {
	var payload bytes.Buffer
	if err := e.png.Encode(&payload, img); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}

	bounds := img.Bounds()
	hdr := NewHeader(bounds.Dx(), bounds.Dy(), payload.Len())

	out := bytes.NewBuffer(make([]byte, 0, HeaderSize+payload.Len()))
	if err := binary.Write(out, binary.LittleEndian, hdr); err != nil {
		return nil, fmt.Errorf("failed to write icon header: %w", err)
	}
	out.Write(payload.Bytes())

	return out.Bytes(), nil
}

// Encode is a convenience wrapper around a default Encoder
func Encode(pb render.PixelBuffer) ([]byte, error) {
	return NewEncoder().Encode(pb)
}

// NewHeader builds the header for a width×height image with a payload of
// payloadLen bytes
func NewHeader(width, height, payloadLen int) Header {
	return Header{
		Type:        typeIcon,
		Count:       1,
		Width:       dimensionByte(width),
		Height:      dimensionByte(height),
		Planes:      colorPlanes,
		BitCount:    bitCount,
		BytesInRes:  uint32(payloadLen),
		ImageOffset: HeaderSize,
	}
}

// dimensionByte stores 256 and above as 0
func dimensionByte(n int) uint8 {
	if n >= maxDimension {
		return 0
	}
	return uint8(n)
}

// ParseHeader decodes the header at the start of an icon file
func ParseHeader(data []byte) (Header, error) {
	var hdr Header
	if len(data) < HeaderSize {
		return hdr, fmt.Errorf("%w: %d bytes", ErrShortHeader, len(data))
	}
	if err := binary.Read(bytes.NewReader(data[:HeaderSize]), binary.LittleEndian, &hdr); err != nil {
		return hdr, fmt.Errorf("failed to read icon header: %w", err)
	}
	return hdr, nil
}

// Payload returns the embedded image bytes described by the header
func Payload(data []byte) ([]byte, error) {
	hdr, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}
	end := uint64(hdr.ImageOffset) + uint64(hdr.BytesInRes)
	if end > uint64(len(data)) {
		return nil, fmt.Errorf("icon payload truncated: need %d bytes, have %d", end, len(data))
	}
	return data[hdr.ImageOffset:end], nil
}
