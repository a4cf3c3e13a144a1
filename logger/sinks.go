package logger

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log channels. Each has its own directory under Config.Dir.
const (
	ChannelAPI        = "api"
	ChannelServer     = "server"
	ChannelWorker     = "worker"
	ChannelExceptions = "exceptions"
)

// Channels lists every channel, in directory creation order.
func Channels() []string {
	return []string{ChannelAPI, ChannelServer, ChannelWorker, ChannelExceptions}
}

// EnsureDirs creates dir and one subdirectory per channel.
func EnsureDirs(dir string) error {
	for _, ch := range Channels() {
		if err := os.MkdirAll(filepath.Join(dir, ch), 0o750); err != nil {
			return err
		}
	}
	return nil
}

// sinks owns the rotating files shared by all loggers derived from one root.
type sinks struct {
	mu    sync.Mutex
	cfg   Config
	files map[string]*lumberjack.Logger
}

func newSinks(cfg Config) *sinks {
	return &sinks{cfg: cfg, files: make(map[string]*lumberjack.Logger)}
}

func (s *sinks) file(channel string) *lumberjack.Logger {
	s.mu.Lock()
	defer s.mu.Unlock()

	if f, ok := s.files[channel]; ok {
		return f
	}
	f := &lumberjack.Logger{
		Filename:   filepath.Join(s.cfg.Dir, channel, channel+".log"),
		MaxSize:    s.cfg.MaxSize,
		MaxBackups: s.cfg.MaxBackups,
		MaxAge:     s.cfg.MaxAge,
		Compress:   s.cfg.Compress,
		LocalTime:  s.cfg.LocalTime,
	}
	s.files[channel] = f
	return f
}

// writer fans out to the console, the channel file and, for error and
// above, the exceptions file.
func (s *sinks) writer(console io.Writer, channel string) io.Writer {
	writers := []io.Writer{console, s.file(channel)}
	if channel != ChannelExceptions {
		writers = append(writers, minLevelWriter{w: s.file(ChannelExceptions), min: zerolog.ErrorLevel})
	}
	return zerolog.MultiLevelWriter(writers...)
}

func (s *sinks) close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for name, f := range s.files {
		if err := f.Close(); err != nil {
			errs = append(errs, err)
		}
		delete(s.files, name)
	}
	return errors.Join(errs...)
}

// minLevelWriter drops events below min.
type minLevelWriter struct {
	w   io.Writer
	min zerolog.Level
}

func (m minLevelWriter) Write(p []byte) (int, error) {
	return len(p), nil
}

func (m minLevelWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level < m.min || level == zerolog.NoLevel {
		return len(p), nil
	}
	return m.w.Write(p)
}
