// Package shoutcast opens ICY/Shoutcast audio streams for relaying.
//
// It is derived from github.com/romantomjak/shoutcast, reworked for proxying:
//   - Streams are opened with the caller's context, so cancelling the context
//     closes the upstream connection
//   - Dial and response header timeouts apply, but there is no timeout on the
//     body, since radio streams never end
//   - When the server interleaves ICY metadata, the blocks are stripped so only
//     audio bytes are returned
package shoutcast
