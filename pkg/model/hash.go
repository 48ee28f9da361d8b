package model

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
)

// DataHash fingerprints a node list independent of its order. Empty lists
// hash to "empty".
func DataHash(nodes []Node) string {
	if len(nodes) == 0 {
		return "empty"
	}
	sorted := NormalizeAll(nodes)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	h := sha256.New()
	for _, n := range sorted {
		h.Write([]byte(n.ID))
		h.Write([]byte{0})
		h.Write([]byte(n.Label))
		h.Write([]byte{0})
		h.Write([]byte(strconv.FormatBool(n.Important)))
		h.Write([]byte{0})
		h.Write([]byte(strconv.FormatFloat(n.Value, 'g', -1, 64)))
		h.Write([]byte{0})
		h.Write([]byte(n.Kind))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}
