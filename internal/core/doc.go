// Package core provides the room model and the leaf components of an
// incremental build run.
//
// # Core Types
//
// RoomSpec: the configured description of a room (path, include glob, ignore
// file, hooks).
// Room: the per-run state of a registered room (build decision, latest
// fingerprint, sticky error flag).
// Fingerprint: a content digest of the files in a room's scope.
//
// # Components
//
// Walker resolves a room's file scope, honouring .gitignore/.ignore/.roomignore
// files, an optional extra ignore file and the include glob.
// Fingerprinter hashes the scope with BLAKE2s-256.
// FileCache persists the last accepted fingerprint per room.
// Executor and Runner run hook commands through a shell and report the result.
package core
