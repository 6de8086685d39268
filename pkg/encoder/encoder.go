// Package encoder turns a selected mailing file into the base64 text the
// upload gateway expects inside its JSON body.
package encoder

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rescp17/mailingDashboard/pkg/fileInfo"
	"github.com/rescp17/mailingDashboard/pkg/mailing"
)

const op = "encode"

// Encoder is the default file encoder. The zero value is ready to use.
type Encoder struct {
	// Logger receives read failures; nil means slog.Default().
	Logger *slog.Logger
}

func (e Encoder) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}

// Encode reads f completely and returns its content as standard base64 with
// no data URL metadata in front of it.
func (e Encoder) Encode(ctx context.Context, f fileInfo.File) (string, error) {
	dataURL, err := e.EncodeDataURL(ctx, f)
	if err != nil {
		return "", err
	}
	return StripDataURLPrefix(dataURL), nil
}

// EncodeDataURL reads f and renders it as data:<mime>;base64,<content>.
func (e Encoder) EncodeDataURL(ctx context.Context, f fileInfo.File) (string, error) {
	if f == nil {
		return "", mailing.ValidationError(op, "no file selected")
	}
	data, err := readAll(ctx, f, e.logger())
	if err != nil {
		e.logger().Error("Failed to read mailing file", "file", f.Name(), "error", err)
		return "", mailing.ReadError(op, err)
	}
	mime := mimetype.Detect(data).String()
	return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(data)), nil
}

// Encode is Encoder{}.Encode.
func Encode(ctx context.Context, f fileInfo.File) (string, error) {
	return Encoder{}.Encode(ctx, f)
}

// EncodeDataURL is Encoder{}.EncodeDataURL.
func EncodeDataURL(ctx context.Context, f fileInfo.File) (string, error) {
	return Encoder{}.EncodeDataURL(ctx, f)
}

// StripDataURLPrefix drops everything up to and including the first comma.
// Base64 never contains a comma, so the remainder is pure content.
func StripDataURLPrefix(s string) string {
	if i := strings.IndexByte(s, ','); i >= 0 {
		return s[i+1:]
	}
	return s
}

func readAll(ctx context.Context, f fileInfo.File, logger *slog.Logger) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Name(), err)
	}
	defer func() {
		if err := rc.Close(); err != nil {
			logger.Warn("Failed to close mailing file", "file", f.Name(), "error", err)
		}
	}()
	data, err := io.ReadAll(&ctxReader{ctx: ctx, r: rc})
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Name(), err)
	}
	return data, nil
}

// ctxReader stops a long read once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
