package server

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"

	"github.com/MaximVasilkin/simple-congratulator-vk-bot/pkg/errors"
	"github.com/MaximVasilkin/simple-congratulator-vk-bot/pkg/layout"
	"github.com/MaximVasilkin/simple-congratulator-vk-bot/pkg/phrases"
	"github.com/MaximVasilkin/simple-congratulator-vk-bot/pkg/postcard"
	"github.com/MaximVasilkin/simple-congratulator-vk-bot/pkg/template"
)

type fakeGenerator struct {
	err    error
	cached bool
	tpl    string
	dest   string
}

func (g *fakeGenerator) Generate(_ context.Context, tpl template.Template, _ *phrases.Bank, dest string) (postcard.Result, error) {
	g.tpl, g.dest = tpl.ID, dest
	if g.err != nil {
		return postcard.Result{}, g.err
	}
	return postcard.Result{Link: "/files/a.jpg", Hash: "abc", Text: "hi", Cached: g.cached}, nil
}

type fakeRenderer struct {
	err  error
	text string
}

func (r *fakeRenderer) Postcard(_ template.Template, text string) (image.Image, layout.Result, error) {
	r.text = text
	if r.err != nil {
		return nil, layout.Result{}, r.err
	}
	return imaging.New(10, 10, color.White), layout.Result{Text: text}, nil
}

func newTestServer(t *testing.T, gen *fakeGenerator, rend *fakeRenderer, filesDir string) (*httptest.Server, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	s := New(Options{
		Generator: gen,
		Renderer:  rend,
		Templates: template.Default(),
		Bank:      phrases.Default(),
		FilesDir:  filesDir,
		Logger:    log.New(&buf),
	})
	ts := httptest.NewServer(s)
	t.Cleanup(ts.Close)
	return ts, &buf
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealth(t *testing.T) {
	ts, _ := newTestServer(t, &fakeGenerator{}, &fakeRenderer{}, "")
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestTemplates(t *testing.T) {
	ts, _ := newTestServer(t, &fakeGenerator{}, &fakeRenderer{}, "")
	resp, err := http.Get(ts.URL + "/templates")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var got []template.Template
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 || got[0].ID == "" || got[0].Box[0] == 0 {
		t.Errorf("templates = %+v", got)
	}
}

func TestCreatePostcard(t *testing.T) {
	tests := []struct {
		name   string
		cached bool
		want   int
	}{
		{"fresh", false, http.StatusCreated},
		{"cached", true, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{cached: tt.cached}
			ts, _ := newTestServer(t, gen, &fakeRenderer{}, "")

			resp := post(t, ts.URL+"/postcards", `{"template":"new-year-blue","destination":"42"}`)
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
			var res postcard.Result
			if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
				t.Fatal(err)
			}
			if res.Link != "/files/a.jpg" || res.Cached != tt.cached {
				t.Errorf("result = %+v", res)
			}
			if gen.tpl != "new-year-blue" || gen.dest != "42" {
				t.Errorf("generate called with %q/%q", gen.tpl, gen.dest)
			}
		})
	}
}

func TestCreatePostcardRandomTemplate(t *testing.T) {
	gen := &fakeGenerator{}
	ts, _ := newTestServer(t, gen, &fakeRenderer{}, "")

	resp := post(t, ts.URL+"/postcards", `{}`)
	if resp.StatusCode != http.StatusCreated {
		t.Errorf("status = %d, want 201", resp.StatusCode)
	}
	if _, err := template.Default().Get(gen.tpl); err != nil {
		t.Errorf("random template %q not in set", gen.tpl)
	}
}

func TestCreatePostcardErrors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		genErr   error
		wantCode errors.Code
		want     int
	}{
		{"bad json", `{`, nil, errors.ErrCodeInvalidInput, http.StatusBadRequest},
		{"unknown template", `{"template":"summer"}`, nil, errors.ErrCodeNotFound, http.StatusNotFound},
		{"cache down", `{}`, errors.New(errors.ErrCodeCacheUnavailable, "redis"), errors.ErrCodeCacheUnavailable, http.StatusServiceUnavailable},
		{"upload failed", `{}`, errors.New(errors.ErrCodeUpload, "vk"), errors.ErrCodeUpload, http.StatusBadGateway},
		{"layout", `{}`, errors.New(errors.ErrCodeLayout, "too long"), errors.ErrCodeLayout, http.StatusUnprocessableEntity},
		{"uncoded", `{}`, io.ErrUnexpectedEOF, errors.ErrCodeInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, logs := newTestServer(t, &fakeGenerator{err: tt.genErr}, &fakeRenderer{}, "")

			resp := post(t, ts.URL+"/postcards", tt.body)
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
			var er errorResponse
			if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
				t.Fatal(err)
			}
			if er.Code != tt.wantCode || er.Message == "" {
				t.Errorf("error body = %+v, want code %s", er, tt.wantCode)
			}
			if n := strings.Count(logs.String(), "request failed"); n != 1 {
				t.Errorf("failure logged %d times, want 1", n)
			}
		})
	}
}

func TestPreview(t *testing.T) {
	rend := &fakeRenderer{}
	ts, _ := newTestServer(t, &fakeGenerator{}, rend, "")

	resp, err := http.Get(ts.URL + "/preview/new-year-red?text=" + "Hello")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "image/jpeg" {
		t.Fatalf("status = %d type = %q", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
	if rend.text != "Hello" {
		t.Errorf("rendered %q, want Hello", rend.text)
	}
	if len(resp.Header.Get("X-Postcard-Hash")) != 64 {
		t.Errorf("hash header = %q", resp.Header.Get("X-Postcard-Hash"))
	}
	if _, err := imaging.Decode(resp.Body); err != nil {
		t.Errorf("body is not an image: %v", err)
	}
}

func TestPreviewComposesWithoutText(t *testing.T) {
	rend := &fakeRenderer{}
	ts, _ := newTestServer(t, &fakeGenerator{}, rend, "")

	resp, err := http.Get(ts.URL + "/preview/new-year-green")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if !strings.HasSuffix(rend.text, "Ура!") {
		t.Errorf("composed text = %q, want closing token", rend.text)
	}
}

func TestPreviewErrors(t *testing.T) {
	rend := &fakeRenderer{err: errors.New(errors.ErrCodeLayout, "no size fits")}
	ts, _ := newTestServer(t, &fakeGenerator{}, rend, "")

	for path, want := range map[string]int{
		"/preview/missing":      http.StatusNotFound,
		"/preview/new-year-red": http.StatusUnprocessableEntity,
	} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != want {
			t.Errorf("GET %s status = %d, want %d", path, resp.StatusCode, want)
		}
	}
}

func TestFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.jpg"), []byte("jpeg"), 0o644); err != nil {
		t.Fatal(err)
	}
	ts, _ := newTestServer(t, &fakeGenerator{}, &fakeRenderer{}, dir)

	resp, err := http.Get(ts.URL + "/files/a.jpg")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(body) != "jpeg" {
		t.Errorf("GET /files/a.jpg = %d %q", resp.StatusCode, body)
	}
}

func TestStatusFor(t *testing.T) {
	if StatusFor(errors.ErrCodeInvalidTemplate) != http.StatusUnprocessableEntity {
		t.Error("invalid template should map to 422")
	}
	if StatusFor("") != http.StatusInternalServerError {
		t.Error("empty code should map to 500")
	}
}
