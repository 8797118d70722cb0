// Package slug derives URL-safe identifiers from display names.
//
// Tenants that do not supply an explicit slug get one generated from
// their name at creation time:
//
//	slug.Make("Acme Corp.")                  // "acme-corp"
//	slug.Make("Big Name", slug.MaxLength(3)) // "big"
package slug
