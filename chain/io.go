package chain

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	gzip "github.com/klauspost/pgzip"
	"github.com/pkg/errors"
)

// BufferSize is the size of buffered I/O windows used throughout the
// package, matching kmcp/cmd/util-io.go's BufferSize.
var BufferSize = 65536

// Open opens file for reading, transparently decompressing it if it looks
// gzipped. "-" means stdin. Grounded verbatim on kmcp/cmd/util-io.go's
// inStream.
func Open(file string) (*bufio.Reader, io.Closer, error) {
	var r *os.File
	var err error
	if file == "-" {
		r = os.Stdin
	} else {
		r, err = os.Open(file)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "fail to read %s", file)
		}
	}

	br := bufio.NewReaderSize(r, BufferSize)

	gzipped, err := isGzip(br)
	if err != nil {
		return nil, r, errors.Wrapf(err, "fail to check whether %s is gzipped", file)
	}
	if gzipped {
		gr, err := gzip.NewReaderN(br, 65536, 4)
		if err != nil {
			return nil, r, errors.Wrapf(err, "fail to create gzip reader for %s", file)
		}
		br = bufio.NewReaderSize(gr, BufferSize)
		return br, multiCloser{gr, r}, nil
	}
	return br, r, nil
}

// Create opens file for writing, optionally gzip-compressing output.
// "-" means stdout. Grounded on kmcp/cmd/util-io.go's outStream.
func Create(file string, gzipped bool, level int) (*bufio.Writer, io.Closer, error) {
	var w *os.File
	if file == "-" || file == "" {
		w = os.Stdout
	} else {
		dir := filepath.Dir(file)
		if fi, err := os.Stat(dir); err == nil && !fi.IsDir() {
			return nil, nil, fmt.Errorf("cannot write file into a non-directory path: %s", dir)
		} else if os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, nil, errors.Wrapf(err, "fail to create directory %s", dir)
			}
		}
		var err error
		w, err = os.Create(file)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "fail to write %s", file)
		}
	}

	if gzipped {
		gw, err := gzip.NewWriterLevel(w, level)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "fail to create gzip writer for %s", file)
		}
		return bufio.NewWriterSize(gw, BufferSize), multiCloser{gw, w}, nil
	}
	return bufio.NewWriterSize(w, BufferSize), w, nil
}

type multiCloser []io.Closer

func (m multiCloser) Close() error {
	for i := len(m) - 1; i >= 0; i-- {
		if m[i] == os.Stdin || m[i] == os.Stdout {
			continue
		}
		if err := m[i].Close(); err != nil {
			return err
		}
	}
	return nil
}

func isGzip(b *bufio.Reader) (bool, error) {
	magic, err := b.Peek(2)
	if err != nil {
		if err == io.EOF {
			return false, nil
		}
		return false, err
	}
	return magic[0] == 0x1f && magic[1] == 0x8b, nil
}
