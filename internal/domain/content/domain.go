package content

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var ErrUnknownDomain = errors.New("unknown content domain")

// Domain names one content category. The name doubles as the storage key of
// the category's slot.
type Domain string

const (
	DomainWorkEntries  Domain = "work-entries"
	DomainCertificates Domain = "certificates"
	DomainProjects     Domain = "projects"
)

func AllDomains() []Domain {
	return []Domain{DomainWorkEntries, DomainCertificates, DomainProjects}
}

func (d Domain) Key() string { return string(d) }

func (d Domain) String() string { return string(d) }

func ParseDomain(s string) (Domain, error) {
	d := Domain(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllDomains() {
		if d == known {
			return d, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDomain, s)
}

// NewID returns an identifier that taken reports as unused.
func NewID(taken func(id string) bool) string {
	for {
		id := uuid.NewString()
		if taken == nil || !taken(id) {
			return id
		}
	}
}

// IDSet indexes the ids of a record list.
func IDSet[T Record[T]](items []T) map[string]struct{} {
	out := make(map[string]struct{}, len(items))
	for _, it := range items {
		out[it.RecordID()] = struct{}{}
	}
	return out
}

// IndexOf returns the position of the record with the given id, or -1.
func IndexOf[T Record[T]](items []T, id string) int {
	for i, it := range items {
		if it.RecordID() == id {
			return i
		}
	}
	return -1
}
