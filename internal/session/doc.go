// Package session computes the local-socket path a client and server
// agree on without any out-of-band coordination, and probes whether a
// server is already listening on it.
//
// The session name defaults to a hex FNV-1a hash of the current working
// directory, so running the editor twice in the same directory attaches
// to the same server while different directories get independent
// servers. An explicit --session name overrides the hash.
package session
