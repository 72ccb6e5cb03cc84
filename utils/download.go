package utils

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
)

// MaxDownloadSize caps the number of bytes accepted for a remote input image.
var MaxDownloadSize int64 = 64 << 20

// DownloadImage fetches the image at url into a new file under dir and returns its path.
func DownloadImage(ctx context.Context, url, dir string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("invalid image URI %s: %w", url, err)
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("unable to download image file from URI %s: %w", url, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unable to download image file from URI %s, status %v", url, res.Status)
	}

	// Keep the remote extension so the decoder and the debug dumps stay readable.
	tmpfile, err := os.CreateTemp(dir, "download-*"+filepath.Ext(path.Base(req.URL.Path)))
	if err != nil {
		return "", fmt.Errorf("unable to create temporary file: %w", err)
	}
	defer tmpfile.Close()

	n, err := io.Copy(tmpfile, io.LimitReader(res.Body, MaxDownloadSize+1))
	if err != nil {
		os.Remove(tmpfile.Name())
		return "", fmt.Errorf("unable to copy the source URI into the destination file: %w", err)
	}
	if n > MaxDownloadSize {
		os.Remove(tmpfile.Name())
		return "", fmt.Errorf("image at URI %s exceeds the %d bytes download limit", url, MaxDownloadSize)
	}
	return tmpfile.Name(), nil
}
