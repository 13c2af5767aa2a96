package fusion

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
)

// maxFetchBytes caps a single remote response.
const maxFetchBytes = 256 << 20

type fileResolver struct{}

func (fileResolver) Fetch(_ context.Context, ref string) ([]byte, error) {
	path := ref
	if strings.HasPrefix(strings.ToLower(ref), "file:") {
		u, err := url.Parse(ref)
		if err != nil {
			return nil, err
		}
		path = u.Path
		if path == "" {
			path = u.Opaque
		}
	}
	return os.ReadFile(path)
}

type httpResolver struct {
	client *http.Client
}

func (h *httpResolver) Fetch(ctx context.Context, ref string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, err
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("http status %s", resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxFetchBytes {
		return nil, fmt.Errorf("response larger than %d bytes", maxFetchBytes)
	}
	return data, nil
}

// dataResolver decodes RFC 2397 data: URLs.
type dataResolver struct{}

func (dataResolver) Fetch(_ context.Context, ref string) ([]byte, error) {
	rest := ref[len("data:"):]
	comma := strings.IndexByte(rest, ',')
	if comma < 0 {
		return nil, fmt.Errorf("malformed data url: missing comma")
	}
	meta, payload := rest[:comma], rest[comma+1:]
	if strings.HasSuffix(strings.ToLower(meta), ";base64") {
		payload = strings.Map(func(r rune) rune {
			if r == ' ' || r == '\n' || r == '\r' || r == '\t' {
				return -1
			}
			return r
		}, payload)
		if unescaped, err := url.PathUnescape(payload); err == nil {
			payload = unescaped
		}
		if data, err := base64.StdEncoding.DecodeString(payload); err == nil {
			return data, nil
		}
		return base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
	}
	s, err := url.PathUnescape(payload)
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}
