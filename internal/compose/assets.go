package compose

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// AssetResolver turns a stored reference (page background or photo) into
// image bytes. References are either data: URIs carried inline or URLs into
// the blob store.
type AssetResolver interface {
	Resolve(ctx context.Context, ref string) ([]byte, error)
}

// HTTPResolver resolves data: URIs locally and fetches everything else over
// HTTP.
type HTTPResolver struct {
	Client *http.Client
}

// NewHTTPResolver returns a resolver with a bounded request timeout.
func NewHTTPResolver() *HTTPResolver {
	return &HTTPResolver{Client: &http.Client{Timeout: 30 * time.Second}}
}

func (r *HTTPResolver) Resolve(ctx context.Context, ref string) ([]byte, error) {
	if strings.HasPrefix(ref, "data:") {
		return decodeDataURI(ref)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build asset request: %w", err)
	}
	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch asset %s: %w", ref, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("asset fetch %s returned status %d", ref, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read asset body: %w", err)
	}
	return data, nil
}

// LocalResolver reads references under a known URL prefix straight from the
// blob directory backing them, so server-stored page assets render without a
// round trip through the server's own asset route. Everything else is
// delegated.
type LocalResolver struct {
	Prefix string
	Dir    string
	Next   AssetResolver
}

func (r *LocalResolver) Resolve(ctx context.Context, ref string) ([]byte, error) {
	if prefix := strings.TrimSuffix(r.Prefix, "/") + "/"; r.Prefix != "" && strings.HasPrefix(ref, prefix) {
		// path.Base strips any traversal smuggled into the reference.
		data, err := os.ReadFile(filepath.Join(r.Dir, path.Base(ref)))
		if err != nil {
			return nil, fmt.Errorf("failed to read asset %s: %w", ref, err)
		}
		return data, nil
	}
	if r.Next == nil {
		return nil, fmt.Errorf("unresolvable asset reference %q", ref)
	}
	return r.Next.Resolve(ctx, ref)
}

func decodeDataURI(uri string) ([]byte, error) {
	comma := strings.IndexByte(uri, ',')
	if comma < 0 {
		return nil, fmt.Errorf("malformed data URI")
	}
	meta, payload := uri[5:comma], uri[comma+1:]
	if strings.HasSuffix(meta, ";base64") {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to decode data URI: %w", err)
		}
		return data, nil
	}
	return []byte(payload), nil
}

var (
	pngMagic  = []byte{0x89, 0x50, 0x4E, 0x47}
	jpegMagic = []byte{0xFF, 0xD8, 0xFF}
)

// sniffImageType detects the embedded image format from magic bytes. The PDF
// writer needs the explicit type since references carry no extension.
func sniffImageType(data []byte) string {
	switch {
	case bytes.HasPrefix(data, pngMagic):
		return "PNG"
	case bytes.HasPrefix(data, jpegMagic):
		return "JPG"
	default:
		return "PNG"
	}
}
