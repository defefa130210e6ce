package logging

import (
	"io"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/bardbit/stremio-mdblist-importer/config"
)

// Configure points the standard logger at stderr and, when a log file is configured,
// at a size-rotated file as well. The returned closer flushes the rotated file.
func Configure(cfg config.LogSettings) (io.Closer, error) {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if strings.TrimSpace(cfg.File) == "" {
		log.SetOutput(os.Stderr)
		return nopCloser{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		return nil, err
	}

	rotator := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}
	log.SetOutput(io.MultiWriter(os.Stderr, rotator))
	log.Printf("[logging] writing logs to %s (max %dMB, %d backups)", cfg.File, cfg.MaxSizeMB, cfg.MaxBackups)
	return rotator, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// RedactKey masks a credential for log output, keeping only its last four characters.
func RedactKey(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return "<none>"
	}
	if len(key) <= 4 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}

// RedactURL masks api key query parameters in a URL before it is logged.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	changed := false
	for name := range q {
		if strings.EqualFold(name, "apikey") {
			q.Set(name, RedactKey(q.Get(name)))
			changed = true
		}
	}
	if !changed {
		return raw
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// RedactPath masks api keys carried inside path segments, such as the Stremio extra
// segment "listSlug=a&apiKey=KEY.json".
func RedactPath(path string) string {
	if !strings.Contains(strings.ToLower(path), "apikey=") {
		return path
	}
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		if !strings.Contains(strings.ToLower(seg), "apikey=") {
			continue
		}
		body, suffix := seg, ""
		if strings.HasSuffix(body, ".json") {
			body, suffix = strings.TrimSuffix(body, ".json"), ".json"
		}
		q, err := url.ParseQuery(body)
		if err != nil {
			segments[i] = "<redacted>" + suffix
			continue
		}
		for name := range q {
			if strings.EqualFold(name, "apikey") {
				q.Set(name, RedactKey(q.Get(name)))
			}
		}
		segments[i] = q.Encode() + suffix
	}
	return strings.Join(segments, "/")
}
