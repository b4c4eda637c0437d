// Package wpmirror incrementally mirrors a WordPress site's published
// content (posts, comments, pages, users, categories, tags) into a local
// append-only versioned SQLite store. Content is normalized to strip
// per-request dynamic markup before fingerprinting, so only genuine
// content changes produce new versions. The archived data can be browsed
// and searched through a read-only JSON API.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, wordpress/, http/).
package wpmirror
