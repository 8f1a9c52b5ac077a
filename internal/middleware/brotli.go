package middleware

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
)

type BrotliConfig struct {
	Quality   int
	Skipper   func(c *gin.Context) bool
	MinLength int
}

var DefaultBrotliConfig = BrotliConfig{
	Quality:   brotli.DefaultCompression,
	MinLength: 1024,
}

// brotliWriter buffers the whole body and decides at the end whether it is
// worth compressing. A Flush switches it to pass-through for good.
type brotliWriter struct {
	gin.ResponseWriter
	buf         bytes.Buffer
	passthrough bool
}

func (bw *brotliWriter) Write(data []byte) (int, error) {
	if bw.passthrough {
		return bw.ResponseWriter.Write(data)
	}
	return bw.buf.Write(data)
}

func (bw *brotliWriter) WriteString(s string) (int, error) {
	return bw.Write([]byte(s))
}

// Flush is called by streaming endpoints; their output is sent uncompressed.
func (bw *brotliWriter) Flush() {
	if !bw.passthrough {
		bw.passthrough = true
		if bw.buf.Len() > 0 {
			_, _ = bw.ResponseWriter.Write(bw.buf.Bytes())
			bw.buf.Reset()
		}
	}
	bw.ResponseWriter.Flush()
}

func (bw *brotliWriter) finish(cfg BrotliConfig) error {
	if bw.passthrough || bw.buf.Len() == 0 {
		return nil
	}
	if bw.buf.Len() < cfg.MinLength {
		_, err := bw.ResponseWriter.Write(bw.buf.Bytes())
		return err
	}

	var out bytes.Buffer
	zw := brotli.NewWriterLevel(&out, cfg.Quality)
	if _, err := zw.Write(bw.buf.Bytes()); err != nil {
		return err
	}
	if err := zw.Close(); err != nil {
		return err
	}

	h := bw.ResponseWriter.Header()
	h.Set("Content-Encoding", "br")
	h.Set("Content-Length", strconv.Itoa(out.Len()))
	_, err := bw.ResponseWriter.Write(out.Bytes())
	return err
}

func Brotli() gin.HandlerFunc {
	return BrotliWithConfig(DefaultBrotliConfig)
}

func BrotliWithConfig(cfg BrotliConfig) gin.HandlerFunc {
	if cfg.Quality < 0 || cfg.Quality > 11 {
		cfg.Quality = brotli.DefaultCompression
	}
	if cfg.MinLength <= 0 {
		cfg.MinLength = DefaultBrotliConfig.MinLength
	}

	return func(c *gin.Context) {
		if shouldSkip(c) {
			c.Next()
			return
		}
		if cfg.Skipper != nil && cfg.Skipper(c) {
			c.Next()
			return
		}
		if !acceptsBrotli(c.Request) {
			c.Next()
			return
		}

		c.Header("Vary", "Accept-Encoding")

		bw := &brotliWriter{ResponseWriter: c.Writer}
		c.Writer = bw
		c.Next()

		if err := bw.finish(cfg); err != nil {
			_ = c.Error(err)
		}
	}
}

// shouldSkip returns true for protocols that must be passed through untouched.
func shouldSkip(c *gin.Context) bool {
	if strings.Contains(c.GetHeader("Accept"), "text/event-stream") {
		return true
	}
	if strings.EqualFold(c.GetHeader("Upgrade"), "websocket") {
		return true
	}
	return false
}

func acceptsBrotli(r *http.Request) bool {
	ae := r.Header.Get("Accept-Encoding")
	for _, enc := range strings.Split(ae, ",") {
		enc = strings.TrimSpace(strings.ToLower(enc))
		if i := strings.IndexByte(enc, ';'); i >= 0 {
			enc = strings.TrimSpace(enc[:i])
		}
		if enc == "br" {
			return true
		}
	}
	return false
}
