package storage

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
)

// gzipCompress returns the gzip encoding of data.
func gzipCompress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer := gzip.NewWriter(&buf)
	if _, err := writer.Write(data); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// gzipDecompress reverses gzipCompress.
func gzipDecompress(data []byte) ([]byte, error) {
	reader, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("invalid gzip data: %w", err)
	}
	defer reader.Close()

	return io.ReadAll(reader)
}
