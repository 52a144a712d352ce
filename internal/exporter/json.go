package exporter

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"

	"agrocaged/pkg/contracts/domain"
)

// GzipSuffix is appended to artifacts written compressed
const GzipSuffix = ".gz"

// EncodeJSON sanitizes v and encodes it. Map keys come out sorted, so equal input
// gives byte-identical output.
func EncodeJSON(w io.Writer, v any, indent bool) error {
	clean, err := Sanitize(v)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(clean)
}

// MarshalJSON is EncodeJSON into a byte slice
func MarshalJSON(v any, indent bool) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodeJSON(&buf, v, indent); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Bundle assembles the aggregated bundle keyed by logical table name
func Bundle(dash *domain.Dashboard) map[string]any {
	bundle := make(map[string]any, len(domain.BundleTables))
	for _, name := range domain.BundleTables {
		value, _ := dash.Table(name)
		bundle[name] = value
	}
	return bundle
}

// writeJSONFile writes v to path, gzip-compressed when compress is set
func writeJSONFile(path string, v any, indent, compress bool) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()

	buffered := bufio.NewWriter(file)
	var out io.Writer = buffered
	var zw *gzip.Writer
	if compress {
		zw, err = gzip.NewWriterLevel(buffered, gzip.BestCompression)
		if err != nil {
			return err
		}
		out = zw
	}

	if err := EncodeJSON(out, v, indent); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if zw != nil {
		if err := zw.Close(); err != nil {
			return fmt.Errorf("compress %s: %w", path, err)
		}
	}
	if err := buffered.Flush(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return file.Close()
}
