package assetstore

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash returns the hex SHA-256 of data. FileStore names blob files by
// the hash of the asset id.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
