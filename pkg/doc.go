// Package pkg holds the congratulator libraries.
//
// # Overview
//
// A postcard request flows through these packages:
//
//	[phrases] bank of labeled phrase groups
//	     ↓
//	[compose] random greeting + content hash
//	     ↓
//	[postcard] cache lookup by hash ([cache])
//	     ↓ miss
//	[layout] font size and line breaks that fit the template box ([fonts])
//	     ↓
//	[render] text drawn on a copy of the [template] image, JPEG encoded
//	     ↓
//	[upload] or [vk] publish and return a link, stored back in the cache
//
// Around the pipeline sit the surfaces that call it: [bot] (VK long poll),
// [server] (HTTP) and the CLI in internal/cli, configured by [config] and
// observed through [observability]. Errors carry codes from [errors].
package pkg
