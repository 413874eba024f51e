package storage

import (
	"bytes"
	"compress/gzip"
	"io"
)

// gzipMagic is the two-byte gzip header; values without it are stored raw,
// so flipping the compression flag never strands existing data.
var gzipMagic = []byte{0x1f, 0x8b}

// compressBytes gzips input with BestCompression
func compressBytes(input []byte) ([]byte, error) {
	var buf bytes.Buffer
	gzipWriter, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := gzipWriter.Write(input); err != nil {
		return nil, err
	}
	if err := gzipWriter.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decompressBytes returns input unchanged unless it starts with the gzip header
func decompressBytes(input []byte) ([]byte, error) {
	if !bytes.HasPrefix(input, gzipMagic) {
		return input, nil
	}
	gzipReader, err := gzip.NewReader(bytes.NewReader(input))
	if err != nil {
		return nil, err
	}
	defer gzipReader.Close()
	return io.ReadAll(gzipReader)
}
