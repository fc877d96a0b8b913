// Package spider provides schema-driven structured extraction from HTML.
// A caller describes which fragments of a page to pull out with a target
// Schema of selectors, and the extraction engine produces a Record (or a
// list of Records) mirroring that schema.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, xpath/, rod/, chi/).
package spider
