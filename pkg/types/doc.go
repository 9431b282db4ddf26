// Package types defines the entity records, response envelopes, store state,
// configuration, and standard errors shared by the dustnbones client packages.
//
// Entities (Specie, Bone) are the records served by the lab backend. The
// backend wraps single records in an Envelope and collections in a raw list
// body that services normalize into a ListResponse. StoreState is the
// client-side mirror a store keeps of the last server data it saw.
package types
