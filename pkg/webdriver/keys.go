package webdriver

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/odvcencio/wdrive/pkg/webdriver/command"
)

// keysToTyping splits text into the per-character list the wire expects.
func keysToTyping(parts ...string) []string {
	var out []string
	for _, p := range parts {
		for _, r := range p {
			out = append(out, string(r))
		}
	}
	if out == nil {
		out = []string{}
	}
	return out
}

// FileDetector decides whether keys sent to an element name a local file
// that must be uploaded to the remote end first.
type FileDetector interface {
	LocalFile(keys ...string) (string, bool)
}

// LocalFileDetector treats the joined keys as a path and matches regular
// files on this machine.
type LocalFileDetector struct{}

func (LocalFileDetector) LocalFile(keys ...string) (string, bool) {
	path := strings.Join(keys, "")
	if path == "" {
		return "", false
	}
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	return path, true
}

// SendKeys types into the element. With a FileDetector configured on the
// session, a local file path is uploaded and the remote path typed instead.
func (e *Element) SendKeys(ctx context.Context, keys ...string) error {
	s, err := e.Session()
	if err != nil {
		return err
	}
	if s.fileDetector != nil {
		if path, ok := s.fileDetector.LocalFile(keys...); ok {
			remote, err := e.upload(ctx, s, path)
			if err != nil {
				return err
			}
			keys = []string{remote}
		}
	}
	_, err = e.execute(ctx, command.SendKeysToElement, map[string]any{
		"text":  strings.Join(keys, ""),
		"value": keysToTyping(keys...),
	})
	return err
}

// upload ships path to the remote end as a zipped base64 payload and returns
// the remote path. Endpoints without upload support get the local path back.
func (e *Element) upload(ctx context.Context, s *Session, path string) (string, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.CreateHeader(&zip.FileHeader{Name: filepath.Base(path), Method: zip.Deflate})
	if err != nil {
		return "", fmt.Errorf("zip %s: %w", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return "", fmt.Errorf("zip %s: %w", path, err)
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("zip %s: %w", path, err)
	}

	v, err := s.value(ctx, command.UploadFile, map[string]any{
		"file": base64.StdEncoding.EncodeToString(buf.Bytes()),
	})
	if err != nil {
		var derr *DriverError
		if errors.Is(err, ErrUnknownCommand) || errors.Is(err, ErrUnsupportedOperation) ||
			(errors.As(err, &derr) && (derr.HTTPStatus == http.StatusNotFound || derr.HTTPStatus == http.StatusMethodNotAllowed)) {
			return path, nil
		}
		return "", err
	}
	return asString(v)
}
