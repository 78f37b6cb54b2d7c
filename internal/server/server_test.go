package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mekonnen/cv-studio/internal/compose"
	"github.com/mekonnen/cv-studio/internal/layout"
	"github.com/mekonnen/cv-studio/internal/record"
)

type fakeStore struct {
	templates map[string]*layout.Template
	byOwner   map[string][]*layout.Template
	tracked   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		templates: make(map[string]*layout.Template),
		byOwner:   make(map[string][]*layout.Template),
	}
}

func (f *fakeStore) SaveTemplate(_ context.Context, ownerID string, tpl *layout.Template, assets []layout.PageAsset) (*layout.Template, error) {
	saved := tpl.Clone()
	for i, a := range assets {
		if a.IsStored() {
			saved.Pages[i] = a.Ref
		} else {
			saved.Pages[i] = fmt.Sprintf("/assets/%s-%d", saved.ID, i)
		}
	}
	f.templates[saved.ID] = saved
	f.byOwner[ownerID] = append(f.byOwner[ownerID], saved)
	return saved, nil
}

func (f *fakeStore) GetTemplate(_ context.Context, id string) (*layout.Template, error) {
	return f.templates[id], nil
}

func (f *fakeStore) ListForOwner(_ context.Context, ownerID, country string) ([]*layout.Template, error) {
	var out []*layout.Template
	for _, tpl := range f.byOwner[ownerID] {
		if country == "" || tpl.Country == country {
			out = append(out, tpl)
		}
	}
	return out, nil
}

func (f *fakeStore) DeleteTemplate(_ context.Context, id string) error {
	delete(f.templates, id)
	return nil
}

func (f *fakeStore) TrackGeneration(_ context.Context, _ string, count int) error {
	f.tracked += count
	return nil
}

type stubComposer struct{}

func (stubComposer) Compose(_ context.Context, tpl *layout.Template, rec *record.Record, agency string) (*compose.Document, error) {
	return &compose.Document{
		Filename: compose.Filename(agency, rec.Text("refNo"), rec.Text("fullName"), tpl.OfficeName),
		PDF:      []byte("%PDF-stub"),
	}, nil
}

func testServer(t *testing.T) (*Server, *fakeStore) {
	t.Helper()
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	st := newFakeStore()
	return newServer(Config{Agency: "PIXEL"}, st, stubComposer{}, nil, nil), st
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	s, _ := testServer(t)
	w := doJSON(t, s, "GET", "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"ok"`) {
		t.Errorf("body = %s, want ok status", w.Body.String())
	}
}

func TestSaveTemplateValidation(t *testing.T) {
	s, _ := testServer(t)

	// Missing office name.
	w := doJSON(t, s, "POST", "/templates", map[string]any{
		"ownerId": "o1", "name": "n", "country": "kuwait",
		"pages": []map[string]string{{"ref": "/assets/p1"}},
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing officeName: status = %d, want 400", w.Code)
	}

	// Unknown country.
	w = doJSON(t, s, "POST", "/templates", map[string]any{
		"ownerId": "o1", "name": "n", "officeName": "OFF", "country": "mars",
		"pages": []map[string]string{{"ref": "/assets/p1"}},
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad country: status = %d, want 400", w.Code)
	}

	// No pages.
	w = doJSON(t, s, "POST", "/templates", map[string]any{
		"ownerId": "o1", "name": "n", "officeName": "OFF", "country": "kuwait",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("no pages: status = %d, want 400", w.Code)
	}
}

func TestSaveAndFetchTemplate(t *testing.T) {
	s, _ := testServer(t)

	w := doJSON(t, s, "POST", "/templates", map[string]any{
		"ownerId": "o1", "name": "Kuwait CV", "officeName": "AL SALAM", "country": "kuwait",
		"pages": []map[string]string{{"data": base64.StdEncoding.EncodeToString([]byte{1, 2, 3}), "contentType": "image/png"}},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("save: status = %d, body %s", w.Code, w.Body.String())
	}

	var saved layout.Template
	if err := json.Unmarshal(w.Body.Bytes(), &saved); err != nil {
		t.Fatalf("decode saved template: %v", err)
	}
	if saved.ID == "" {
		t.Fatal("saved template has no id")
	}
	if len(saved.Pages) != 1 || saved.Pages[0] == "" {
		t.Errorf("saved pages = %v, want one substituted reference", saved.Pages)
	}

	w = doJSON(t, s, "GET", "/templates/"+saved.ID, nil)
	if w.Code != http.StatusOK {
		t.Errorf("fetch: status = %d, want 200", w.Code)
	}

	w = doJSON(t, s, "GET", "/templates/does-not-exist", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("missing template: status = %d, want 404", w.Code)
	}
}

func TestListTemplatesFiltersByCountry(t *testing.T) {
	s, st := testServer(t)
	kw := layout.New("KW", "OFF", "kuwait")
	sa := layout.New("SA", "OFF", "saudi")
	st.byOwner["o1"] = []*layout.Template{kw, sa}

	w := doJSON(t, s, "GET", "/owners/o1/templates?country=kuwait", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var got []*layout.Template
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(got) != 1 || got[0].Name != "KW" {
		t.Errorf("got %d templates, want just the kuwait one", len(got))
	}

	// Unknown owner returns an empty list, not null.
	w = doJSON(t, s, "GET", "/owners/nobody/templates", nil)
	if strings.TrimSpace(w.Body.String()) != "[]" {
		t.Errorf("body = %s, want []", w.Body.String())
	}
}

func TestRenderReturnsPDF(t *testing.T) {
	s, st := testServer(t)
	tpl := layout.New("KW", "AL SALAM", "kuwait")
	tpl.Pages = []string{"/assets/p1"}
	st.templates[tpl.ID] = tpl

	rec := record.New()
	rec.Set("fullName", "abebe kebede")
	rec.Set("refNo", "GH-0042")

	w := doJSON(t, s, "POST", "/render", map[string]any{
		"templateId": tpl.ID,
		"record":     rec,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Content-Type = %s, want application/pdf", ct)
	}
	cd := w.Header().Get("Content-Disposition")
	if !strings.Contains(cd, "PIXEL_GH-0042_ABEBE_KEBEDE_AL_SALAM.pdf") {
		t.Errorf("Content-Disposition = %s, want generated filename", cd)
	}
}

func TestRenderUnknownTemplate(t *testing.T) {
	s, _ := testServer(t)
	w := doJSON(t, s, "POST", "/render", map[string]any{
		"templateId": "nope",
		"record":     record.New(),
	})
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestRenderBatchZipsDocuments(t *testing.T) {
	s, st := testServer(t)
	for _, name := range []string{"A", "B"} {
		tpl := layout.New(name, "OFF "+name, "kuwait")
		tpl.Pages = []string{"/assets/p1"}
		st.byOwner["o1"] = append(st.byOwner["o1"], tpl)
	}

	w := doJSON(t, s, "POST", "/render/batch", map[string]any{
		"ownerId": "o1",
		"country": "kuwait",
		"record":  record.New(),
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/zip" {
		t.Errorf("Content-Type = %s, want application/zip", ct)
	}
	if got := w.Header().Get("X-Generated-Count"); got != "2" {
		t.Errorf("X-Generated-Count = %s, want 2", got)
	}
	if got := w.Header().Get("X-Failed-Count"); got != "0" {
		t.Errorf("X-Failed-Count = %s, want 0", got)
	}
	if st.tracked != 2 {
		t.Errorf("tracked = %d, want 2", st.tracked)
	}
}

// refRecordingComposer captures the reference number each template rendered
// with.
type refRecordingComposer struct {
	refs map[string]string
}

func (c *refRecordingComposer) Compose(_ context.Context, tpl *layout.Template, rec *record.Record, agency string) (*compose.Document, error) {
	if c.refs == nil {
		c.refs = make(map[string]string)
	}
	c.refs[tpl.ID] = rec.Text("refNo")
	return &compose.Document{
		Filename: compose.Filename(agency, rec.Text("refNo"), rec.Text("fullName"), tpl.OfficeName),
		PDF:      []byte("%PDF-stub"),
	}, nil
}

func TestRenderBatchAppliesPerTemplateOverrides(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	st := newFakeStore()
	comp := &refRecordingComposer{}
	s := newServer(Config{Agency: "PIXEL"}, st, comp, nil, nil)

	a := layout.New("A", "OFF A", "kuwait")
	b := layout.New("B", "OFF B", "kuwait")
	for _, tpl := range []*layout.Template{a, b} {
		tpl.Pages = []string{"/assets/p1"}
		st.byOwner["o1"] = append(st.byOwner["o1"], tpl)
	}

	rec := record.New()
	rec.Set("refNo", "GH-0001")

	w := doJSON(t, s, "POST", "/render/batch", map[string]any{
		"ownerId": "o1",
		"country": "kuwait",
		"record":  rec,
		"overrides": map[string]any{
			a.ID: map[string]string{"refNo": "GH-0100"},
		},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if got := comp.refs[a.ID]; got != "GH-0100" {
		t.Errorf("template A rendered with ref %q, want override GH-0100", got)
	}
	if got := comp.refs[b.ID]; got != "GH-0001" {
		t.Errorf("template B rendered with ref %q, want the record's GH-0001", got)
	}
}

func TestRenderBatchNoTemplates(t *testing.T) {
	s, _ := testServer(t)
	w := doJSON(t, s, "POST", "/render/batch", map[string]any{
		"ownerId": "o1",
		"country": "kuwait",
		"record":  record.New(),
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestAssetRouteServesStoredFiles(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bg.png"), []byte("png-bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
	s := newServer(Config{Agency: "PIXEL", AssetDir: dir, AssetBaseURL: "/assets"}, newFakeStore(), stubComposer{}, nil, nil)

	w := doJSON(t, s, "GET", "/assets/bg.png", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if w.Body.String() != "png-bytes" {
		t.Errorf("body = %q, want stored asset bytes", w.Body.String())
	}

	w = doJSON(t, s, "GET", "/assets/missing.png", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("missing asset: status = %d, want 404", w.Code)
	}
}

func TestScanUnconfigured(t *testing.T) {
	s, _ := testServer(t)
	w := doJSON(t, s, "POST", "/scan/passport", map[string]any{
		"image": base64.StdEncoding.EncodeToString([]byte{1}), "mimeType": "image/jpeg",
	})
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{&ErrNotFound{Kind: "template", ID: "x"}, http.StatusNotFound},
		{&ErrValidation{Field: "country", Message: "bad"}, http.StatusBadRequest},
		{&ErrNoTemplates{Country: "kuwait"}, http.StatusBadRequest},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := HTTPStatus(c.err); got != c.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", c.err, got, c.want)
		}
	}
}
