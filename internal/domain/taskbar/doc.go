// Package taskbar projects a window collection into the views that sit
// around the desktop: taskbar buttons, the activity monitor process list
// and the render set. Every function is a pure read of the records it is
// given.
package taskbar
