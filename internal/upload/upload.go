package upload

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"catalogadmin/internal/metrics"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

var ErrNotImage = errors.New("uploaded file must be an image")

// allowedTypes are the raster formats accepted. Scriptable image types such
// as SVG are refused because uploads are served from the panel's origin.
var allowedTypes = []string{"image/png", "image/jpeg", "image/gif", "image/webp"}

// sniffLen is how much of the file is inspected to detect its type.
const sniffLen = 3072

// Store writes uploaded images into a directory served under urlPrefix.
type Store struct {
	dir       string
	urlPrefix string
}

func NewStore(dir, urlPrefix string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{dir: dir, urlPrefix: "/" + strings.Trim(urlPrefix, "/")}, nil
}

// FromRequest stores the single file sent under field and returns its
// reference path. It returns "" when the request carries no such file.
func (s *Store) FromRequest(r *http.Request, field string) (string, error) {
	file, _, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read %s upload: %w", field, err)
	}
	defer file.Close()

	ref, err := s.Save(file)
	if err != nil {
		return "", err
	}

	metrics.UploadsTotal.WithLabelValues(field).Inc()
	return ref, nil
}

// Save copies src into a new uniquely named file and returns its reference path.
func (s *Store) Save(src io.Reader) (string, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(src, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]

	mt := mimetype.Detect(head)
	if !mimetype.EqualsAny(mt.String(), allowedTypes...) {
		return "", ErrNotImage
	}

	name := uuid.NewString() + mt.Extension()
	dst, err := os.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}

	written, err := io.Copy(dst, io.MultiReader(bytes.NewReader(head), src))
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("write upload file: %w", err)
	}

	metrics.UploadBytes.Add(float64(written))
	return path.Join(s.urlPrefix, name), nil
}

func (s *Store) URLPrefix() string {
	return s.urlPrefix
}

// Handler serves stored files; mount it under URLPrefix. Responses are
// sandboxed and never content-sniffed by the browser.
func (s *Store) Handler() http.Handler {
	files := http.StripPrefix(s.urlPrefix, http.FileServer(http.Dir(s.dir)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; sandbox")
		files.ServeHTTP(w, r)
	})
}
