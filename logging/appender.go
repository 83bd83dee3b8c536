package logging

import (
	"io"
	"os"
	"sync"

	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Appender is an output for log entries. zapcore.Core satisfies it, which is how the test
// observer is attached.
type Appender interface {
	Write(zapcore.Entry, []zapcore.Field) error
	Sync() error
}

// ConsoleAppender writes console-encoded entries to a writer.
type ConsoleAppender struct {
	mu      sync.Mutex
	encoder zapcore.Encoder
	w       io.Writer
}

// NewStdoutAppender creates a ConsoleAppender writing to stdout.
func NewStdoutAppender() *ConsoleAppender {
	return NewWriterAppender(os.Stdout)
}

// NewWriterAppender creates a ConsoleAppender writing to w.
func NewWriterAppender(w io.Writer) *ConsoleAppender {
	return &ConsoleAppender{encoder: zapcore.NewConsoleEncoder(NewEncoderConfig()), w: w}
}

// Write encodes the entry and writes it out.
func (ca *ConsoleAppender) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	buf, err := ca.encoder.EncodeEntry(entry, fields)
	if err != nil {
		return err
	}
	defer buf.Free()

	ca.mu.Lock()
	defer ca.mu.Unlock()
	_, err = ca.w.Write(buf.Bytes())
	return err
}

// Sync syncs the writer when it supports it.
func (ca *ConsoleAppender) Sync() error {
	if syncer, ok := ca.w.(interface{ Sync() error }); ok && ca.w != os.Stdout {
		return syncer.Sync()
	}
	return nil
}

// FileAppender writes console-encoded entries to a size rotated log file.
type FileAppender struct {
	*ConsoleAppender
	file *lumberjack.Logger
}

// NewFileAppender creates an appender writing to path, keeping a few compressed backups once the
// file grows past maxSizeMB.
func NewFileAppender(path string, maxSizeMB int) *FileAppender {
	file := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: 3,
		Compress:   true,
	}
	return &FileAppender{ConsoleAppender: NewWriterAppender(file), file: file}
}

// Close closes the underlying file.
func (fa *FileAppender) Close() error {
	return fa.file.Close()
}
