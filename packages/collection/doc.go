// Package collection organizes saved requests into named trees of folders.
//
// A Collection is a root Folder. Folders nest up to MaxDepth levels and are
// traversed pre-order: a folder's own requests first, then its sub-folders in
// order. Collections persist as a JSON file (Store) and move between
// machines as an export document validated against a JSON schema on import.
package collection
