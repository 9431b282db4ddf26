package types

// Resource collection paths on the backend.
const (
	ResourceSpecies = "species"
	ResourceBones   = "bones"
)

// RelationSpecie scopes a bone listing to one specie (/bones/specie/{id}).
const RelationSpecie = "specie"

// Durable storage keys for store snapshots.
const (
	StorageKeySpecies = "specieStorage"
	StorageKeyBones   = "boneStorage"
)

// StorageKeys lists every snapshot key, in display order.
var StorageKeys = []string{
	StorageKeySpecies,
	StorageKeyBones,
}
