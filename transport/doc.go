// Package transport binds translated wire event sequences to concrete
// streaming transports. It provides:
//
//   - Streamer: frames one wire event sequence over a chunked HTTP response,
//     either as Server-Sent Events or as newline-delimited JSON, injecting
//     heartbeat frames on an idle timer so intermediary proxies keep the
//     connection open
//   - Handler: a gin HTTP surface accepting run requests, negotiating the
//     stream format from the Accept header and propagating client
//     disconnects upstream as run cancellation
//   - WebSocket: the same event sequence over a gorilla/websocket connection
//
// The stream closes immediately and irrevocably after a terminal wire event;
// clients may rely on no further frames being sent. Heartbeats are a
// transport concern only and are never visible to translation logic.
package transport
