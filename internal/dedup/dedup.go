// Package dedup builds an in-memory duplicate index over a region's
// existing board tasks so an import pass creates each clinic once. The
// index is rebuilt per batch from the board, which stays the only
// persistent store; nothing here survives the process.
package dedup

import (
	"strings"

	"outreach_backend/internal/board"
	"outreach_backend/platform/phone"
)

const (
	webPrefix = "web:"
	telPrefix = "tel:"
	sigPrefix = "sig:"
)

// Index holds the known identity keys for one region.
type Index struct {
	keys map[string]struct{}
}

// NormalizeWebsite canonicalizes a website for identity comparison:
// lowercased, scheme and www. stripped, trailing slash removed. Returns
// "" for blank input.
func NormalizeWebsite(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	s = strings.TrimPrefix(s, "www.")
	s = strings.TrimSuffix(s, "/")
	return s
}

// nameCitySig builds the weakest identity key. Every named record
// contributes one, but a new lead only matches on it when it carries
// neither website nor phone.
func nameCitySig(name, city string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	city = strings.ToLower(strings.TrimSpace(city))
	if name == "" {
		return ""
	}
	return name + "|" + city
}

// Build indexes the identity keys of every existing task on a list.
// Existing tasks contribute all of their keys; seasoned records are
// richer than fresh ones and must be matchable on any attribute.
func Build(tasks []board.Task) *Index {
	idx := &Index{keys: make(map[string]struct{}, len(tasks)*2)}
	for _, t := range tasks {
		idx.add(allKeys(t.Website, t.Phone, t.Name, t.City))
	}
	return idx
}

// Contains reports whether the lead's identity key is already known.
// Only the lead's strongest available key is consulted: website first,
// then phone, then the name signature. A lead that carries a website is
// identified by that website alone, so two clinics sharing a name do
// not merge when their sites differ.
func (idx *Index) Contains(lead board.Lead) bool {
	key := primaryKey(lead.Website, lead.Phone, lead.Name, lead.City)
	if key == "" {
		return false
	}
	_, ok := idx.keys[key]
	return ok
}

// Register adds a just-created lead's keys so later leads in the same
// batch dedup against it.
func (idx *Index) Register(lead board.Lead) {
	idx.add(allKeys(lead.Website, lead.Phone, lead.Name, lead.City))
}

// Len returns the number of distinct identity keys.
func (idx *Index) Len() int {
	return len(idx.keys)
}

func (idx *Index) add(keys []string) {
	for _, k := range keys {
		idx.keys[k] = struct{}{}
	}
}

// allKeys derives every identity key a record offers.
func allKeys(website, phoneNumber, name, city string) []string {
	var keys []string
	if w := NormalizeWebsite(website); w != "" {
		keys = append(keys, webPrefix+w)
	}
	if d := phone.Digits(phoneNumber); d != "" {
		keys = append(keys, telPrefix+d)
	}
	if sig := nameCitySig(name, city); sig != "" {
		keys = append(keys, sigPrefix+sig)
	}
	return keys
}

// primaryKey derives the single strongest key: first non-empty of
// website, phone, name signature.
func primaryKey(website, phoneNumber, name, city string) string {
	if w := NormalizeWebsite(website); w != "" {
		return webPrefix + w
	}
	if d := phone.Digits(phoneNumber); d != "" {
		return telPrefix + d
	}
	if sig := nameCitySig(name, city); sig != "" {
		return sigPrefix + sig
	}
	return ""
}
