// Package observability provides hooks for metrics and logging around the
// postcard pipeline and the VK API client.
//
// Hooks are plain interfaces passed to the components that emit events.
// There is no global registry: the composition root builds one value and
// hands it to every consumer that needs it.
//
// # Usage
//
//	hooks := observability.NewLogHooks(logger)
//	svc := &postcard.Service{Cache: c, Uploader: u, Hooks: hooks}
//	client := vk.NewClient(token, vk.WithHTTPHooks(hooks))
package observability

import (
	"context"
	"time"
)

// Hooks receives events from the postcard pipeline.
type Hooks interface {
	// OnCacheHit records a lookup that found a link.
	OnCacheHit(ctx context.Context, hash string)

	// OnCacheMiss records a lookup that found nothing.
	OnCacheMiss(ctx context.Context, hash string)

	// OnCacheStore records a write; err is non-nil when the store failed.
	OnCacheStore(ctx context.Context, hash string, err error)

	// OnRender records one fit-and-draw of a template.
	OnRender(ctx context.Context, template string, size float64, duration time.Duration, err error)

	// OnUpload records one upload attempt.
	OnUpload(ctx context.Context, destination string, bytes int, duration time.Duration, err error)
}

// HTTPHooks receives events from outgoing HTTP calls.
type HTTPHooks interface {
	// OnRequest records an outgoing HTTP request.
	OnRequest(ctx context.Context, method, host, path string)

	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError records an HTTP error (network failure, timeout).
	OnError(ctx context.Context, method, host, path string, err error)
}

// NopHooks implements Hooks and HTTPHooks and discards every event.
type NopHooks struct{}

func (NopHooks) OnCacheHit(context.Context, string)                                     {}
func (NopHooks) OnCacheMiss(context.Context, string)                                    {}
func (NopHooks) OnCacheStore(context.Context, string, error)                            {}
func (NopHooks) OnRender(context.Context, string, float64, time.Duration, error)        {}
func (NopHooks) OnUpload(context.Context, string, int, time.Duration, error)            {}
func (NopHooks) OnRequest(context.Context, string, string, string)                      {}
func (NopHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NopHooks) OnError(context.Context, string, string, string, error)                 {}

var (
	_ Hooks     = NopHooks{}
	_ HTTPHooks = NopHooks{}
)

// OrNop returns h, or NopHooks when h is nil.
func OrNop(h Hooks) Hooks {
	if h == nil {
		return NopHooks{}
	}
	return h
}

// HTTPOrNop returns h, or NopHooks when h is nil.
func HTTPOrNop(h HTTPHooks) HTTPHooks {
	if h == nil {
		return NopHooks{}
	}
	return h
}
