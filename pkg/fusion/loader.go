package fusion

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"net/http"
	"strings"
	"sync"
	"time"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/Fepozopo/imgfuse/pkg/stdimg"
)

// DefaultHTTPTimeout bounds a single http(s) fetch.
const DefaultHTTPTimeout = 30 * time.Second

// Resolver fetches the raw bytes behind a reference.
type Resolver interface {
	Fetch(ctx context.Context, ref string) ([]byte, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx context.Context, ref string) ([]byte, error)

func (f ResolverFunc) Fetch(ctx context.Context, ref string) ([]byte, error) { return f(ctx, ref) }

// LoaderConfig configures NewLoader.
type LoaderConfig struct {
	// HTTPClient is used for http and https references. When nil a client
	// with HTTPTimeout (or DefaultHTTPTimeout) is created.
	HTTPClient  *http.Client
	HTTPTimeout time.Duration
	// S3 enables s3://bucket/key references.
	S3 S3GetObjectAPI
}

// Loader turns references (paths, file/http/data/s3 URLs) into pixel grids.
type Loader struct {
	mu        sync.RWMutex
	resolvers map[string]Resolver
}

// NewLoader returns a Loader with the file, data and http(s) resolvers
// registered, plus s3 when cfg.S3 is set.
func NewLoader(cfg LoaderConfig) *Loader {
	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.HTTPTimeout
		if timeout <= 0 {
			timeout = DefaultHTTPTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	l := &Loader{resolvers: map[string]Resolver{}}
	l.Register("file", fileResolver{})
	l.Register("data", dataResolver{})
	h := &httpResolver{client: client}
	l.Register("http", h)
	l.Register("https", h)
	if cfg.S3 != nil {
		l.Register("s3", &s3Resolver{client: cfg.S3})
	}
	return l
}

// Register installs r for references with the given scheme, replacing any
// existing resolver.
func (l *Loader) Register(scheme string, r Resolver) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.resolvers[strings.ToLower(scheme)] = r
}

func (l *Loader) resolver(scheme string) (Resolver, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	r, ok := l.resolvers[scheme]
	return r, ok
}

// Load fetches and decodes ref. Every failure is a *LoadError.
func (l *Loader) Load(ctx context.Context, ref string) (*image.NRGBA, error) {
	started := time.Now()
	scheme := schemeOf(ref)
	r, ok := l.resolver(scheme)
	if !ok {
		return nil, &LoadError{Ref: ref, Err: fmt.Errorf("unsupported scheme %q", scheme)}
	}
	data, err := r.Fetch(ctx, ref)
	if err != nil {
		return nil, &LoadError{Ref: ref, Err: err}
	}
	img, err := l.Decode(ref, data)
	if err != nil {
		return nil, err
	}
	Logger().Debug("image loaded",
		"ref", shortRef(ref),
		"bytes", len(data),
		"width", img.Rect.Dx(),
		"height", img.Rect.Dy(),
		"elapsed", time.Since(started))
	return img, nil
}

// Decode decodes raw image bytes, applying the JPEG EXIF orientation.
// ref is only used for error reporting.
func (l *Loader) Decode(ref string, data []byte) (*image.NRGBA, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &LoadError{Ref: ref, Err: fmt.Errorf("decode: %w", err)}
	}
	if format == "jpeg" {
		if o, err := jpegOrientation(data); err == nil && o != 1 {
			img = stdimg.AutoOrient(img, o)
		}
	}
	return stdimg.ToNRGBA(img), nil
}

// schemeOf returns the lower-cased URL scheme of ref, or "file" for plain
// paths (including Windows drive letters).
func schemeOf(ref string) string {
	i := strings.IndexByte(ref, ':')
	if i < 2 {
		return "file"
	}
	for _, c := range ref[:i] {
		isAlpha := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
		if !isAlpha && !(c >= '0' && c <= '9') && c != '+' && c != '-' && c != '.' {
			return "file"
		}
	}
	return strings.ToLower(ref[:i])
}
