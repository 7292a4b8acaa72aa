package kv

import (
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/klauspost/compress/zstd"
)

// Stored values carry a one byte tag so compressed and plain payloads can
// share a key across threshold changes.
const (
	tagJSON byte = 'j'
	tagZstd byte = 'z'
)

var errCorrupt = errors.New("corrupt stored value")

// Codec turns values into tagged bytes. Payloads larger than Threshold are
// zstd-compressed; a zero Threshold disables compression.
type Codec struct {
	Threshold int

	enc *zstd.Encoder
	dec *zstd.Decoder
}

// NewCodec creates a codec. The zstd encoder and decoder are reused across
// calls through their stateless EncodeAll/DecodeAll entry points.
func NewCodec(threshold int) (*Codec, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(64<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	return &Codec{Threshold: threshold, enc: enc, dec: dec}, nil
}

// Encode marshals v with sonic and compresses large payloads.
func (c *Codec) Encode(v any) ([]byte, error) {
	raw, err := sonic.Marshal(v)
	if err != nil {
		return nil, err
	}
	if c.Threshold > 0 && len(raw) > c.Threshold {
		out := make([]byte, 1, len(raw)/2)
		out[0] = tagZstd
		return c.enc.EncodeAll(raw, out), nil
	}
	out := make([]byte, 0, len(raw)+1)
	out = append(out, tagJSON)
	return append(out, raw...), nil
}

// Decode reverses Encode into dst.
func (c *Codec) Decode(data []byte, dst any) error {
	if len(data) == 0 {
		return errCorrupt
	}
	payload := data[1:]
	switch data[0] {
	case tagJSON:
	case tagZstd:
		raw, err := c.dec.DecodeAll(payload, nil)
		if err != nil {
			return fmt.Errorf("%w: %v", errCorrupt, err)
		}
		payload = raw
	default:
		return fmt.Errorf("%w: unknown tag %q", errCorrupt, data[0])
	}
	return sonic.Unmarshal(payload, dst)
}

// Close releases the zstd workers.
func (c *Codec) Close() {
	c.enc.Close()
	c.dec.Close()
}
