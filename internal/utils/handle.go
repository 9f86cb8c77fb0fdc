package utils

import "github.com/gosimple/slug"

// DeriveHandle builds the URL-safe login handle from a display name.
// Punctuation is stripped, so "Max Mustermann!!" and "Max Mustermann"
// derive the same handle.
func DeriveHandle(fullname string) string {
	return slug.Make(fullname)
}
