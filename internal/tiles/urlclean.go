// Package tiles turns XYZ templates and WMTS capability documents into tile URL functions
// and serves them as redirects.
package tiles

import "regexp"

var repeatedSlash = regexp.MustCompile(`([^:]/)/+`)

// CleanURL collapses runs of '/' into one, except right after a ':' so the "://" of a
// scheme survives. A longer run after the colon still collapses to two: "file:///tmp"
// becomes "file://tmp".
func CleanURL(s string) string {
	return repeatedSlash.ReplaceAllString(s, "$1")
}
