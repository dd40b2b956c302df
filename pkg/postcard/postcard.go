// Package postcard runs the get-or-create pipeline: look a greeting up by
// content hash, and only on a miss render it, upload it and remember the
// link.
//
// Every operation returns (value, error). The error's code from pkg/errors
// is the failure kind: CACHE_UNAVAILABLE, LAYOUT_ERROR, UPLOAD_FAILURE,
// COMPOSE_ERROR or an asset error such as NOT_FOUND. The service does not
// log failures it returns; the caller at the edge (bot handler, HTTP
// handler, CLI command) logs each one once.
package postcard

import (
	"context"
	"image"
	"time"

	"github.com/charmbracelet/log"

	"github.com/MaximVasilkin/simple-congratulator-vk-bot/pkg/cache"
	"github.com/MaximVasilkin/simple-congratulator-vk-bot/pkg/compose"
	"github.com/MaximVasilkin/simple-congratulator-vk-bot/pkg/errors"
	"github.com/MaximVasilkin/simple-congratulator-vk-bot/pkg/layout"
	"github.com/MaximVasilkin/simple-congratulator-vk-bot/pkg/observability"
	"github.com/MaximVasilkin/simple-congratulator-vk-bot/pkg/phrases"
	"github.com/MaximVasilkin/simple-congratulator-vk-bot/pkg/render"
	"github.com/MaximVasilkin/simple-congratulator-vk-bot/pkg/template"
	"github.com/MaximVasilkin/simple-congratulator-vk-bot/pkg/upload"
)

// Renderer fits and draws greeting text onto a template.
// *render.Compositor implements it.
type Renderer interface {
	Postcard(tpl template.Template, text string) (image.Image, layout.Result, error)
}

// Service wires the pipeline collaborators. All fields except Hooks,
// Logger, Composer and JPEGQuality are required.
type Service struct {
	Cache       cache.Cache
	Uploader    upload.Uploader
	Renderer    Renderer
	Composer    *compose.Composer   // nil uses compose.New()
	Hooks       observability.Hooks // nil discards events
	Logger      *log.Logger         // nil uses log.Default()
	JPEGQuality int                 // 0 uses render.DefaultJPEGQuality
}

// Result is the outcome of a successful request.
type Result struct {
	Link   string `json:"link"`
	Hash   string `json:"hash"`
	Text   string `json:"text"`
	Cached bool   `json:"cached"` // served from cache without rendering
}

// GetOrCreate returns the link for greeting on tpl, rendering and
// uploading it only when the cache has no entry for its hash.
//
// A failed lookup aborts the request before anything is rendered. A failed
// store after a successful upload is logged and the fresh link returned.
func (s *Service) GetOrCreate(ctx context.Context, tpl template.Template, greeting compose.Greeting, destination string) (Result, error) {
	hooks := observability.OrNop(s.Hooks)
	res := Result{Hash: greeting.Hash, Text: greeting.Text}

	link, ok, err := s.Cache.Get(ctx, greeting.Hash)
	if err != nil {
		return res, errors.WrapKeep(errors.ErrCodeCacheUnavailable, err, "look up postcard")
	}
	if ok {
		hooks.OnCacheHit(ctx, greeting.Hash)
		res.Link, res.Cached = link, true
		return res, nil
	}
	hooks.OnCacheMiss(ctx, greeting.Hash)

	data, err := s.render(ctx, hooks, tpl, greeting.Text)
	if err != nil {
		return res, err
	}

	start := time.Now()
	link, err = s.Uploader.Upload(ctx, data, destination)
	if err == nil && link == "" {
		err = errors.New(errors.ErrCodeUpload, "uploader returned an empty link")
	}
	hooks.OnUpload(ctx, destination, len(data), time.Since(start), err)
	if err != nil {
		return res, errors.Wrap(errors.ErrCodeUpload, err, "upload postcard for %s", destination)
	}
	res.Link = link

	err = s.Cache.Set(ctx, greeting.Hash, link)
	hooks.OnCacheStore(ctx, greeting.Hash, err)
	if err != nil {
		s.logger().Warn("postcard uploaded but not cached", "hash", greeting.Hash, "err", err)
	}
	return res, nil
}

// Generate composes a fresh greeting for tpl and runs GetOrCreate on it.
func (s *Service) Generate(ctx context.Context, tpl template.Template, bank *phrases.Bank, destination string) (Result, error) {
	greeting, err := s.composer().Compose(bank, tpl.Image, tpl.Font)
	if err != nil {
		return Result{}, err
	}
	return s.GetOrCreate(ctx, tpl, greeting, destination)
}

func (s *Service) render(ctx context.Context, hooks observability.Hooks, tpl template.Template, text string) ([]byte, error) {
	start := time.Now()
	img, fitted, err := s.Renderer.Postcard(tpl, text)
	hooks.OnRender(ctx, tpl.ID, float64(fitted.Size), time.Since(start), err)
	if err != nil {
		return nil, errors.WrapKeep(errors.ErrCodeInternal, err, "render template %s", tpl.ID)
	}
	data, err := render.JPEG(img, s.JPEGQuality)
	if err != nil {
		return nil, err
	}
	return data, nil
}

var defaultComposer = compose.New()

func (s *Service) composer() *compose.Composer {
	if s.Composer == nil {
		return defaultComposer
	}
	return s.Composer
}

func (s *Service) logger() *log.Logger {
	if s.Logger == nil {
		return log.Default()
	}
	return s.Logger
}
