// Package client holds per-attached-terminal state: viewport size,
// scroll position, the stdin-pipe buffer an attached process's input is
// collected into, and a bounded navigation history ring.
package client
