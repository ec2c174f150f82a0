package clean

import (
	"strings"

	"github.com/malimedia/auctionpipe/internal/record"
)

// Exclusions holds the static sets of blacklisted email domains and full
// email addresses. Matching is case-insensitive on both sets.
type Exclusions struct {
	domains map[string]struct{}
	emails  map[string]struct{}
}

// NewExclusions builds the exclusion sets. Entries are lower-cased and
// trimmed; empty entries are dropped.
func NewExclusions(domains, emails []string) *Exclusions {
	e := &Exclusions{
		domains: make(map[string]struct{}, len(domains)),
		emails:  make(map[string]struct{}, len(emails)),
	}
	for _, d := range domains {
		if d = strings.ToLower(strings.TrimSpace(d)); d != "" {
			e.domains[d] = struct{}{}
		}
	}
	for _, m := range emails {
		if m = strings.ToLower(strings.TrimSpace(m)); m != "" {
			e.emails[m] = struct{}{}
		}
	}
	return e
}

// Excluded reports whether the email is blacklisted, either by exact
// address or by domain. A malformed email without an @ has no
// recognizable domain and is never excluded.
func (e *Exclusions) Excluded(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, ok := e.emails[email]; ok {
		return true
	}
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return false
	}
	_, ok := e.domains[email[at+1:]]
	return ok
}

// Filter drops records whose customer email is excluded and reports how
// many were removed. Input order is preserved.
func (e *Exclusions) Filter(recs []record.AuctionRecord) ([]record.AuctionRecord, int) {
	kept := make([]record.AuctionRecord, 0, len(recs))
	for _, r := range recs {
		if e.Excluded(r.CustEmail) {
			continue
		}
		kept = append(kept, r)
	}
	return kept, len(recs) - len(kept)
}
