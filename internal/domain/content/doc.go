// Package content provides the static data the desktop shows.
//
// Sources:
//   - Posts: markdown files with YAML frontmatter, re-read on every call
//   - Catalog: the work history, from TOML or the built-in catalog
//   - Media: image and video files classified by sniffed MIME type
//
// Library combines them into finder listings and command palette search.
// Unknown finder categories list as empty rather than failing.
package content
