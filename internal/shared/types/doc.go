// Package types provides shared data structures for the ChaseOS backend.
//
// Geometry:
//   - Position, Size, Frame: window placement in viewport pixels
//   - Viewport: the client's visible desktop area
//
// Requests:
//   - OpenWindowRequest, GeometryRequest, PointerRequest: desktop commands
//   - WSMessage: WebSocket envelope
//
// Registry:
//   - App: a desktop icon entry (finder category or system panel)
package types
