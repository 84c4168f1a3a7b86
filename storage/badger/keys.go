package badger

import (
	"fmt"

	"github.com/easypatent/easypatent/core"
)

// Key prefixes for different data types
const (
	patentRecordPrefix = "patrec"
	patentStatusPrefix = "patstat"
)

// makePatentKey generates a key for a patent record by publication number.
func makePatentKey(number string) []byte {
	return []byte(fmt.Sprintf("%s:%s", patentRecordPrefix, number))
}

// makeStatusKey generates a composite key for the embedding-status index.
// Format: prefix:status:number
func makeStatusKey(status core.EmbeddingStatus, number string) []byte {
	return []byte(fmt.Sprintf("%s:%d:%s", patentStatusPrefix, status, number))
}

// makeStatusPrefix generates the key prefix shared by all index entries for
// one embedding status. Used for prefix scans.
func makeStatusPrefix(status core.EmbeddingStatus) []byte {
	return []byte(fmt.Sprintf("%s:%d:", patentStatusPrefix, status))
}
