// Package filesystem provides the directory-backed FileSource used by
// "docqa import", including fsnotify-based watching for --watch.
package filesystem
