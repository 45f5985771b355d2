// Package fixture holds the in-memory state served by the mock backend.
//
// A Store owns one Collection per resource plus the website settings
// singleton. Collections are ordered, guarded by their own RWMutex, and
// hand out deep copies so callers can never alias stored records. Ids come
// from a per-collection counter that starts after the highest seeded id and
// is never rewound by deletes.
//
// Seed data is embedded (seed.yaml) and can be replaced with LoadSeedFile.
// Reset restores one or more collections to the seed.
package fixture
