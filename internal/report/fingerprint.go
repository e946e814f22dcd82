package report

import (
	"fmt"

	"github.com/spaolacci/murmur3"
)

// Fingerprint digests everything a document prints: the header line, then
// block text, severity and order. Equal views yield equal fingerprints.
func Fingerprint(header string, blocks []Block) string {
	h := murmur3.New128()
	h.Write([]byte(header))
	h.Write([]byte{0})
	for _, b := range blocks {
		h.Write([]byte(b.Severity.String()))
		h.Write([]byte{0})
		h.Write([]byte(b.Text()))
		h.Write([]byte{0})
	}
	hi, lo := h.Sum128()
	return fmt.Sprintf("%016x%016x", hi, lo)
}
