// Package ws streams desktop snapshots over a WebSocket and accepts window
// commands on the same connection.
//
// Client messages carry a type and the fields that command needs:
//
//	{"type":"open","open":{"kind":"blog","slug":"hello"}}
//	{"type":"pointer","windowId":"blog-hello","pointer":{"type":"move","x":10,"y":20}}
//	{"type":"panel_open","panel":"task-manager"}
//	{"type":"shortcut","message":"search"}
//
// The server sends a "snapshot" message whenever the desktop changes,
// "pong" for "ping", and "error" for rejected commands.
package ws
