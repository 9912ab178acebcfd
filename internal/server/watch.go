package server

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/matzehuels/lassoview/pkg/errors"
)

const watchDebounce = 100 * time.Millisecond

// Watch reloads the scene whenever path changes, until ctx is done. The
// parent directory is watched so editors that replace the file on save are
// still seen. Reload errors are logged and the previous scene is kept.
func (s *Server) Watch(ctx context.Context, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create watcher")
	}
	defer watcher.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "watch %s", path)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return errors.Wrap(errors.ErrCodeFileNotFound, err, "watch %s", path)
	}
	s.logger.Info("watching", "path", path)

	debounce := time.NewTimer(0)
	<-debounce.C
	for {
		select {
		case <-ctx.Done():
			debounce.Stop()
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Name != abs || ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			debounce.Reset(watchDebounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("watch error", "err", err)
		case <-debounce.C:
			if err := s.Reload(ctx); err != nil {
				s.logger.Error("reload failed", "code", errors.GetCode(err), "err", err)
			}
		}
	}
}
