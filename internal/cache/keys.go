package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Key derives a cache key from a namespace and the computation inputs. The
// namespace separates input shapes (extraction vs scoring vs handoff dedupe)
// so equal payloads in different pipelines can never collide.
func Key(namespace string, inputs any) string {
	data, _ := json.Marshal(inputs)
	h := sha256.New()
	h.Write([]byte(namespace))
	h.Write([]byte{0})
	h.Write(data)
	return namespace + ":" + hex.EncodeToString(h.Sum(nil)[:16])
}
