package fastq

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"
	"sync/atomic"

	"github.com/klauspost/pgzip"
	"github.com/shenwei356/bio/seqio/fastx"
)

var ErrClosed = errors.New("record writer is closed")

// RecordWriter writes records in an async fashion: records are cached and
// handed in batches to a single goroutine that owns the output stream.
// Call Close() when you're done!
type RecordWriter struct {
	file    *os.File
	stream  io.WriteCloser
	buf     *bufio.Writer
	cache   []*fastx.Record
	records chan []*fastx.Record
	errors  chan error
	failed  atomic.Pointer[error]
	closed  bool
}

// NewRecordWriter creates the file and starts the writing goroutine. Paths
// ending in .gz are gzip compressed at level (pgzip.DefaultCompression for
// the default). cachesize is how many records to buffer at a time.
func NewRecordWriter(filename string, level, cachesize int) (*RecordWriter, error) {
	if cachesize < 1 {
		cachesize = 1
	}
	fh, err := os.Create(filename)
	if err != nil {
		return nil, err
	}

	w := &RecordWriter{
		file:    fh,
		cache:   make([]*fastx.Record, 0, cachesize),
		records: make(chan []*fastx.Record),
		errors:  make(chan error, 1),
	}
	var out io.Writer = fh
	if strings.HasSuffix(filename, ".gz") {
		gz, err := pgzip.NewWriterLevel(fh, level)
		if err != nil {
			fh.Close()
			return nil, err
		}
		w.stream = gz
		out = gz
	}
	w.buf = bufio.NewWriterSize(out, 1<<16)

	go w.drain()
	return w, nil
}

func (w *RecordWriter) drain() {
	var err error
	for records := range w.records {
		if err != nil {
			continue
		}
		for _, record := range records {
			if _, err = w.buf.Write(record.Format(0)); err != nil {
				failure := err
				w.failed.Store(&failure)
				break
			}
		}
	}
	if ferr := w.buf.Flush(); err == nil {
		err = ferr
	}
	if w.stream != nil {
		if cerr := w.stream.Close(); err == nil {
			err = cerr
		}
	}
	if cerr := w.file.Close(); err == nil {
		err = cerr
	}
	w.errors <- err
}

// Write caches record. Once the writing goroutine has failed, every Write
// returns that error and the record is dropped.
func (w *RecordWriter) Write(record *fastx.Record) error {
	if w.closed {
		return ErrClosed
	}
	if err := w.failed.Load(); err != nil {
		return *err
	}
	w.cache = append(w.cache, record)
	if cap(w.cache) == len(w.cache) {
		w.Flush()
	}
	return nil
}

// Flush hands the cached records to the writing goroutine.
func (w *RecordWriter) Flush() {
	if w.closed || len(w.cache) == 0 {
		return
	}
	w.records <- w.cache
	w.cache = make([]*fastx.Record, 0, cap(w.cache))
}

// Close flushes what is left, closes the file and reports the first error
// met while writing.
func (w *RecordWriter) Close() error {
	if w.closed {
		return ErrClosed
	}
	w.Flush()
	w.closed = true
	close(w.records)
	return <-w.errors
}
