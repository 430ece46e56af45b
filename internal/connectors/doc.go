// Package connectors acquires markup from the places a user can point
// htmltab at. Each subpackage implements driven.Fetcher for one family of
// sources (local files and stdin, web pages) and shares charset handling
// through textdecode.
//
// Fetchers are collected in a Registry at startup and chosen by source kind.
package connectors
