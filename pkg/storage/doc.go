// Package storage owns the destination directory and the dedup decision.
//
// Artifacts follow the naming convention <author>_<postID>[_<ordinal>].<ext>
// and there is no manifest: a post counts as fetched as soon as any file in
// the directory listing contains its identifier. The listing is taken once
// per user with Manager.Snapshot.
//
// Usage:
//
//	m, err := storage.NewManager(storage.UserDir(base, "alice", perUser))
//	snap, err := m.Snapshot()
//	if snap.Contains(postID) {
//	    // skip the whole post
//	}
package storage
