// Package models defines the domain entities of the jamming playlist builder and their persistence interfaces.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects: plain structs normalized from provider responses
//   - [Track] : a search result reduced to what a playlist needs
//
// 2. Persistent Entities: database-backed models implementing [Model]
//   - [Draft] : the playlist being assembled, with de-duplicated tracks
//   - [SavedPlaylist] : a record of one save attempt, including partial ones
//
// The Repository[T] interface defines the CRUD operations implemented in the repositories package.
package models
