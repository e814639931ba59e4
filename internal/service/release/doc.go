// Package release generates the versioned update feed consumed by the
// desktop application's auto-updater.
//
// It walks a directory of signed build outputs, classifies each artifact's
// operating system and architecture from its file name via an ordered rule
// table, deterministically picks one artifact per platform target by score
// and first-seen order, and writes latest.json alongside the assets.
package release
