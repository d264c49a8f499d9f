package screening

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the assessor's artifacts whenever the model or scaler file
// is written or replaced. It runs until ctx is cancelled. A failed reload
// is logged and the previous artifacts stay active; onReload is called with
// the outcome of every attempt.
//
// The parent directories are watched rather than the files, so saves that
// write a temporary file and rename it over an artifact are seen.
func (s *Assessor) Watch(ctx context.Context, modelPath, scalerPath string, onReload func(error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	targets := map[string]bool{
		filepath.Clean(modelPath):  true,
		filepath.Clean(scalerPath): true,
	}
	dirs := map[string]bool{}
	for p := range targets {
		dirs[filepath.Dir(p)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return err
		}
	}

	s.logger.Info("screening: watching artifacts", "model", modelPath, "scaler", scalerPath)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !targets[filepath.Clean(event.Name)] {
				continue
			}
			// a rename over the artifact arrives as Create
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			err := s.Reload(modelPath, scalerPath)
			if err != nil {
				s.logger.Error("screening: reload failed, keeping previous artifacts",
					"path", event.Name, "err", err)
			}
			if onReload != nil {
				onReload(err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("screening: watcher error", "err", err)
		}
	}
}
