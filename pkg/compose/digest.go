package compose

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"hash"
	"sort"
	"strings"

	"github.com/MaximVasilkin/simple-congratulator-vk-bot/pkg/errors"
)

// Digest names a hash function used to derive content hashes.
type Digest struct {
	Name string
	New  func() hash.Hash
}

// SHA256 is the default digest. Its hex output is 64 characters.
var SHA256 = Digest{Name: "sha256", New: sha256.New}

var digests = map[string]Digest{
	"md5":    {Name: "md5", New: md5.New},
	"sha1":   {Name: "sha1", New: sha1.New},
	"sha256": SHA256,
	"sha512": {Name: "sha512", New: sha512.New},
}

// DigestByName looks up a digest by its lowercase name.
func DigestByName(name string) (Digest, error) {
	d, ok := digests[strings.ToLower(name)]
	if !ok {
		return Digest{}, errors.New(errors.ErrCodeInvalidConfig, "unknown digest %q (available: %s)", name, strings.Join(DigestNames(), ", "))
	}
	return d, nil
}

// DigestNames returns the supported digest names, sorted.
func DigestNames() []string {
	names := make([]string, 0, len(digests))
	for n := range digests {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Sum returns the lowercase hex digest of the concatenated parts.
func (d Digest) Sum(parts ...string) string {
	h := d.New()
	for _, p := range parts {
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}
