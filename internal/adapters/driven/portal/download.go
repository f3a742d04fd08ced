package portal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/fsnotify/fsnotify"

	"github.com/aguaralabs/facturante-cli/internal/core/domain"
	"github.com/aguaralabs/facturante-cli/internal/logger"
)

const (
	// downloadStableInterval is how often a candidate file's size is
	// sampled while the browser is still writing it.
	downloadStableInterval = 200 * time.Millisecond

	// downloadStableSamples is how many consecutive unchanged sizes mark
	// a download as complete.
	downloadStableSamples = 2
)

// RetrieveDocument clicks through to the generated document and waits
// for the browser to finish downloading it. With a non-empty outputDir
// the file is moved under an issuer subdirectory; otherwise it stays in
// the session's ephemeral download directory.
func (s *Session) RetrieveDocument(ctx context.Context, invoiceID, outputDir string) (string, error) {
	watcher, err := newDownloadWatcher(s.downloadDir)
	if err != nil {
		return "", fmt.Errorf("%w: watching downloads: %w", domain.ErrDocumentRetrieval, err)
	}
	defer watcher.Close()

	err = s.run(ctx,
		chromedp.WaitVisible(printButton, chromedp.ByQuery),
		pause(500, 1000),
		chromedp.Click(printButton, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("%w: requesting document: %w", domain.ErrDocumentRetrieval, err)
	}

	path, err := watcher.wait(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: downloading document: %w", domain.ErrDocumentRetrieval, err)
	}

	if outputDir == "" {
		// Ephemeral run: the file disappears with the session directory.
		return path, nil
	}

	destDir := filepath.Join(outputDir, string(s.cred.Issuer))
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", fmt.Errorf("%w: creating document directory: %w", domain.ErrDocumentRetrieval, err)
	}

	dest := filepath.Join(destDir, invoiceID+".pdf")
	if err := moveFile(path, dest); err != nil {
		return "", fmt.Errorf("%w: storing document: %w", domain.ErrDocumentRetrieval, err)
	}

	logger.Debug("Session %s: document stored at %s", s.cred.Issuer, dest)
	return dest, nil
}

// downloadWatcher waits for the browser to drop a finished PDF into a
// directory.
type downloadWatcher struct {
	watcher *fsnotify.Watcher
	dir     string
}

func newDownloadWatcher(dir string) (*downloadWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, err
	}
	return &downloadWatcher{watcher: w, dir: dir}, nil
}

func (d *downloadWatcher) Close() error {
	return d.watcher.Close()
}

// wait blocks until a PDF lands in the directory and its size stops
// changing, then returns its path. The browser writes a partial file
// first and renames it when done, so only the final name is matched.
func (d *downloadWatcher) wait(ctx context.Context) (string, error) {
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case err, ok := <-d.watcher.Errors:
			if !ok {
				return "", errors.New("download watcher closed")
			}
			return "", err
		case event, ok := <-d.watcher.Events:
			if !ok {
				return "", errors.New("download watcher closed")
			}
			if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
				continue
			}
			if !isPDF(event.Name) {
				continue
			}
			if err := d.awaitStable(ctx, event.Name); err != nil {
				return "", err
			}
			return event.Name, nil
		}
	}
}

// awaitStable returns once the file's size has stayed the same for
// downloadStableSamples consecutive samples.
func (d *downloadWatcher) awaitStable(ctx context.Context, path string) error {
	ticker := time.NewTicker(downloadStableInterval)
	defer ticker.Stop()

	var lastSize int64 = -1
	stable := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			info, err := os.Stat(path)
			if err != nil {
				// The partial may have been renamed; keep sampling until
				// the final file settles or the context expires.
				lastSize, stable = -1, 0
				continue
			}
			if info.Size() > 0 && info.Size() == lastSize {
				stable++
				if stable >= downloadStableSamples {
					return nil
				}
			} else {
				stable = 0
			}
			lastSize = info.Size()
		}
	}
}

// isPDF reports whether the file name carries a .pdf extension.
func isPDF(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}

// moveFile renames src to dst, copying when the rename crosses
// filesystems.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}
