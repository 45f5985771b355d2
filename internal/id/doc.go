// Package id provides identifier generation for fixture records and issued tokens.
//
// Two families of identifiers are produced:
//
//   - Sequence: monotonically increasing int64 ids for fixture records. A
//     sequence starts above the highest seeded id and never hands out an id
//     twice, even after the record holding it is deleted.
//   - UUID / Token / Short: random identifiers backed by github.com/google/uuid,
//     used for request ids, server and subscription tokens, and invite codes.
package id
