// Package desktop binds one client's window manager, gesture controller
// and system panels to a store namespace.
//
// Every command runs under the desktop's lock and is followed by a
// broadcast to observers. Discrete changes (open, close, focus, minimize,
// restore, maximize, panels) are written at once; pointer moves go through
// a debouncer that writes the live layout once the moves stop.
//
// Registry hands out desktops by id and evicts idle ones.
package desktop
