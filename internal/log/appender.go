package log

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/natefinch/lumberjack.v2"

	"firestige.xyz/pktchain/internal/config"
)

// MultiWriter fans a formatted entry out to every output. A failing output
// does not stop the others.
type MultiWriter struct {
	writers []io.Writer
}

func NewMultiWriter() *MultiWriter {
	return &MultiWriter{writers: make([]io.Writer, 0)}
}

func (m *MultiWriter) Write(p []byte) (n int, err error) {
	for _, w := range m.writers {
		if _, e := w.Write(p); e != nil {
			err = e
		}
	}
	return len(p), err
}

func (m *MultiWriter) Add(writer io.Writer) *MultiWriter {
	m.writers = append(m.writers, writer)
	return m
}

// AddFileAppender adds a size-rotated file output.
func (m *MultiWriter) AddFileAppender(fc config.FileOutputConfig) error {
	if fc.Path == "" {
		return fmt.Errorf("file output requires 'path' field")
	}
	m.writers = append(m.writers, &lumberjack.Logger{
		Filename:   fc.Path,
		MaxSize:    fc.Rotation.MaxSizeMB,  // megabytes
		MaxBackups: fc.Rotation.MaxBackups, // number of backups
		MaxAge:     fc.Rotation.MaxAgeDays, // days
		Compress:   fc.Rotation.Compress,   // compress the backups
	})
	return nil
}

// Close closes outputs that hold a file. Console streams are left open.
func (m *MultiWriter) Close() error {
	var errs []error
	for _, w := range m.writers {
		if lj, ok := w.(*lumberjack.Logger); ok {
			errs = append(errs, lj.Close())
		}
	}
	return errors.Join(errs...)
}
