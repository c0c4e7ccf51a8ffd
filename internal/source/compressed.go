package source

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/pierrec/lz4"
)

// readCompressed unpacks a gzip, lz4 or zip payload in memory and decodes the
// inner file by its own extension. Zip archives contribute their largest
// regular file.
func (l *Loader) readCompressed(name, src string, format Format, data []byte) (*Result, error) {
	var (
		inner  []byte
		inName string
		err    error
	)
	switch format {
	case FormatGzip:
		inName = trimExt(name)
		inner, err = gunzip(data)
	case FormatLZ4:
		inName = trimExt(name)
		inner, err = io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
	case FormatZip:
		inName, inner, err = largestZipEntry(data)
	}
	if err != nil {
		return nil, &ParseError{Source: src, Format: format, Err: err}
	}
	innerFormat := InferFormat(inName)
	switch innerFormat {
	case FormatGzip, FormatLZ4, FormatZip:
		return nil, &ParseError{Source: src, Format: format, Err: fmt.Errorf("nested archive %s is not supported", inName)}
	}
	l.Logger.Debug("unpacked archive", "source", src, "entry", inName, "bytes", len(inner))
	res, err := l.decode(filepath.Base(inName), src+"!"+inName, innerFormat, inner)
	if err != nil {
		return nil, err
	}
	res.Warnings = append([]string{fmt.Sprintf("read %s from %s archive", filepath.Base(inName), format)}, res.Warnings...)
	return res, nil
}

func trimExt(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

func gunzip(data []byte) ([]byte, error) {
	gr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer gr.Close()
	return io.ReadAll(gr)
}

func largestZipEntry(data []byte) (string, []byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", nil, err
	}
	var largest *zip.File
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if largest == nil || f.UncompressedSize64 > largest.UncompressedSize64 {
			largest = f
		}
	}
	if largest == nil {
		return "", nil, fmt.Errorf("archive holds no files")
	}
	rc, err := largest.Open()
	if err != nil {
		return "", nil, err
	}
	defer rc.Close()
	b, err := io.ReadAll(rc)
	return largest.Name, b, err
}
