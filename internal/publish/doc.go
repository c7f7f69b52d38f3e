// Package publish delivers the contents of published channels.
//
// A Router selects a backend per record: the `to` option of the publish
// target when set, the configured default otherwise. Backends:
//
//   - log: one structured log line per value;
//   - print: `target = value` lines on a writer;
//   - dir: JSON lines under a directory, one file per target;
//   - socketio: one event per record on a socket.io server.
package publish
