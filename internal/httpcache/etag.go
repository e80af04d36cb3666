package httpcache

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// ETag fingerprints a payload's logical content: MD5 over its canonical JSON
// serialization, wrapped in quotes per the ETag header convention. Payloads
// with identical content hash identically (encoding/json emits map keys in
// sorted order). A payload that cannot be serialized degrades to a
// timestamp-derived tag, so cache validation weakens instead of the response
// path crashing.
func ETag(payload any) string {
	body, err := json.Marshal(payload)
	if err != nil {
		return `"fallback-` + strconv.FormatInt(time.Now().UnixNano(), 10) + `"`
	}
	return ETagForBody(body)
}

// ETagForBody fingerprints an already-serialized body.
func ETagForBody(body []byte) string {
	sum := md5.Sum(body)
	return `"` + hex.EncodeToString(sum[:]) + `"`
}

// IsFresh reports whether a conditional request header matches the current
// ETag. Both single-value and comma-separated multi-value headers are
// supported; each candidate is compared exactly after trimming.
func IsFresh(ifNoneMatch, etag string) bool {
	if ifNoneMatch == "" || etag == "" {
		return false
	}
	for _, candidate := range strings.Split(ifNoneMatch, ",") {
		if strings.TrimSpace(candidate) == etag {
			return true
		}
	}
	return false
}
