// Package proto implements the wire codec for the client<->server local
// socket: little-endian primitive encoding (u8/u16/u32/char-as-u32,
// length-prefixed []byte/string) and a frame reader/writer built on top
// of it. Keystrokes, viewport size, and stdin-piped bytes travel
// client->server; rendered frame bytes travel server->client. Neither
// direction interprets the frame payload itself — that is the relaying
// client's and the editor's business, not this package's.
package proto
