// Package snapshot serializes canvas state and upgrades older documents.
//
// [Encode] writes the current [Document] format. [Migrate] accepts both the
// current format and legacy documents: nodes with a content_markdown field,
// image nodes carrying inline mime_type/original_width/original_height/
// byte_size metadata instead of a separate file record, node collections
// stored as arrays, and persisted node orders that drifted from the node
// set. Whatever it is given, Migrate returns a state whose node order is a
// permutation of its nodes and whose edges all connect existing nodes.
//
// [FileStore] keeps named canvases as JSON files.
package snapshot
