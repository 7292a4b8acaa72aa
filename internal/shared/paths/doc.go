// Package paths resolves the on-disk layout of a deployment.
//
// Every configured path (store, posts, media, company catalog) is relative
// to one root so the server can run from any working directory:
//
//	<root>/
//	  ├── data/                  (layout store)
//	  └── content/
//	      ├── posts/             (markdown posts)
//	      ├── media/             (images/, videos/)
//	      └── companies.toml     (optional catalog override)
//
// # Usage
//
//	layout, err := paths.New(*root)
//	postsDir := layout.Resolve(cfg.Content.PostsDir)
package paths
