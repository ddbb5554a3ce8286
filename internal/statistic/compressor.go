package statistic

import (
	"fmt"

	"github.com/klauspost/compress/zstd"

	"nltrack/internal/statistic/interfaces"
)

// A day of snapshot rows is a few MB of JSON at most; anything decoding larger is not
// one of our archives.
const maxArchiveBytes = 256 << 20

// ZstdCompression encodes whole archive files in one call. The scheduler writes one
// file at a time, so a single encoder goroutine is enough.
type ZstdCompression struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

func (z *ZstdCompression) Compress(val []byte) ([]byte, error) {
	return z.encoder.EncodeAll(val, make([]byte, 0, len(val)/4)), nil
}

func (z *ZstdCompression) Decompress(val []byte) ([]byte, error) {
	out, err := z.decoder.DecodeAll(val, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd archive: %w", err)
	}
	return out, nil
}

func (z *ZstdCompression) Close() {
	_ = z.encoder.Close()
	z.decoder.Close()
}

func NewZstdCompressor() (interfaces.CompressorInterface, error) {
	encoder, err := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.SpeedBetterCompression),
		zstd.WithEncoderConcurrency(1),
		zstd.WithEncoderCRC(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil,
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderMaxMemory(maxArchiveBytes),
	)
	if err != nil {
		_ = encoder.Close()
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	return &ZstdCompression{encoder: encoder, decoder: decoder}, nil
}
