// Package blobhash reproduces git's object naming for the short text keys
// used by the notes-backed store.
package blobhash

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
)

// Sum returns the hex object id git assigns to a blob containing key followed
// by a newline, i.e. what `git hash-object --stdin` prints when fed key plus
// "\n". The store writes exactly that blob, so listing the notes tree yields
// the set of keys already stored without a separate index.
func Sum(key string) string {
	h := sha1.New()
	fmt.Fprintf(h, "blob %d\x00", len(key)+1)
	h.Write([]byte(key))
	h.Write([]byte{'\n'})
	return hex.EncodeToString(h.Sum(nil))
}
