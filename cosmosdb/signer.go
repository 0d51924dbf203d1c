package cosmosdb

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	stderrors "errors"
	"hash"
	"net/url"
	"strings"
)

const resourceTypeDocs = "docs"

var errSignerReleased = stderrors.New("cosmosdb: request signer used after release")

// resourceLink is the unescaped document link the signature is computed over.
func resourceLink(databaseID, containerID, documentID string) string {
	return "dbs/" + databaseID + "/colls/" + containerID + "/docs/" + documentID
}

// resourcePath is the request path. Each identifier is escaped on its own
// so a "/" inside an id never becomes a separator.
func resourcePath(databaseID, containerID, documentID string) string {
	return "dbs/" + url.PathEscape(databaseID) +
		"/colls/" + url.PathEscape(containerID) +
		"/docs/" + url.PathEscape(documentID)
}

// signaturePayload is the string-to-sign of the master key scheme.
func signaturePayload(verb, resourceType, link, date string) string {
	return strings.ToLower(verb) + "\n" +
		strings.ToLower(resourceType) + "\n" +
		link + "\n" +
		strings.ToLower(date) + "\n" +
		"\n"
}

// authorizationToken computes the url-encoded authorization header value.
func authorizationToken(mac hash.Hash, verb, resourceType, link, date string) string {
	mac.Reset()
	mac.Write([]byte(signaturePayload(verb, resourceType, link, date)))
	sig := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return url.QueryEscape("type=master&ver=1.0&sig=" + sig)
}

// requestSigner signs exactly one request. It owns a private copy of the
// key and its own HMAC state. release zeroes the key copy and drops the
// HMAC state.
type requestSigner struct {
	key       []byte
	mac       hash.Hash
	link      string
	onRelease func()
	released  bool
}

func newRequestSigner(key []byte, link string, onRelease func()) *requestSigner {
	own := make([]byte, len(key))
	copy(own, key)
	return &requestSigner{
		key:       own,
		mac:       hmac.New(sha256.New, own),
		link:      link,
		onRelease: onRelease,
	}
}

// authorize returns the authorization header value for method and the
// x-ms-date value the request carries.
func (s *requestSigner) authorize(method, date string) (string, error) {
	if s.released {
		return "", errSignerReleased
	}
	return authorizationToken(s.mac, method, resourceTypeDocs, s.link, date), nil
}

func (s *requestSigner) release() {
	if s.released {
		return
	}
	s.released = true
	s.mac.Reset()
	clear(s.key)
	s.mac = nil
	if s.onRelease != nil {
		s.onRelease()
	}
}
