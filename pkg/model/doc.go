// Package model defines the NSPass resources served by the mock backend.
//
// Every resource is a plain value type that embeds Base (id plus
// timestamps) and knows how to deep-copy itself. Updates arrive as patch
// structs whose pointer fields distinguish "absent" from "zero": Apply
// overwrites only the fields that were present in the request body.
package model
