// Package vk is a small client for the parts of the VK API a community bot
// needs: sending messages, uploading message photos and receiving events
// over the Bots Long Poll API.
//
// All API calls go through [Client.Call], which adds the access token and
// API version, decodes the {"response": ...} envelope and turns
// {"error": ...} payloads into [*APIError]. Transient failures (network
// errors, 5xx responses, "too many requests") are retried with backoff.
//
// # Usage
//
//	client := vk.NewClient(token)
//	lp := vk.NewLongPoll(client, groupID)
//	err := lp.Listen(ctx, func(ctx context.Context, ev vk.Event) {
//	    msg, err := ev.MessageNew()
//	    ...
//	})
package vk
