package webdriver

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/odvcencio/wdrive/pkg/webdriver/command"
)

// ScreenshotBase64 captures the viewport as base64 PNG text.
func (s *Session) ScreenshotBase64(ctx context.Context) (string, error) {
	v, err := s.value(ctx, command.Screenshot, nil)
	if err != nil {
		return "", err
	}
	return screenshotText(v)
}

// ScreenshotPNG captures the viewport as PNG bytes.
func (s *Session) ScreenshotPNG(ctx context.Context) ([]byte, error) {
	v, err := s.value(ctx, command.Screenshot, nil)
	if err != nil {
		return nil, err
	}
	return screenshotBytes(v)
}

// SaveScreenshot writes the viewport capture to path, which must end in
// .png.
func (s *Session) SaveScreenshot(ctx context.Context, path string) error {
	if err := checkPNGPath(path); err != nil {
		return err
	}
	png, err := s.ScreenshotPNG(ctx)
	if err != nil {
		return err
	}
	return writePNG(path, png)
}

// screenshotText normalizes a capture to base64 text. Endpoints that answer
// with image/png deliver raw bytes instead.
func screenshotText(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case []byte:
		return base64.StdEncoding.EncodeToString(t), nil
	}
	return "", fmt.Errorf("%w: expected screenshot data, got %T", ErrProtocol, v)
}

func screenshotBytes(v any) ([]byte, error) {
	switch t := v.(type) {
	case []byte:
		return t, nil
	case string:
		png, err := base64.StdEncoding.DecodeString(t)
		if err != nil {
			return nil, fmt.Errorf("%w: screenshot is not base64: %v", ErrProtocol, err)
		}
		return png, nil
	}
	return nil, fmt.Errorf("%w: expected screenshot data, got %T", ErrProtocol, v)
}

func checkPNGPath(path string) error {
	if !strings.HasSuffix(strings.ToLower(path), ".png") {
		return fmt.Errorf("%w: screenshot path %q must end in .png", ErrInvalidArgument, path)
	}
	return nil
}

func writePNG(path string, png []byte) error {
	if err := checkPNGPath(path); err != nil {
		return err
	}
	if err := os.WriteFile(path, png, 0o644); err != nil {
		return fmt.Errorf("write screenshot: %w", err)
	}
	return nil
}
