package senders

import (
	"net/mail"
	"strings"

	"go.uber.org/zap"
)

// DomainChecker matches sender addresses against a set of domains
type DomainChecker struct {
	domains map[string]struct{}
	logger  *zap.Logger
}

// NewDomainChecker creates a checker for the given domains
func NewDomainChecker(domains []string, logger *zap.Logger) *DomainChecker {
	set := make(map[string]struct{}, len(domains))
	for _, d := range domains {
		d = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(d)), "@")
		if d != "" {
			set[d] = struct{}{}
		}
	}

	if len(set) > 0 && logger != nil {
		logger.Info("Initialized internal sender domains", zap.Strings("domains", domains))
	}

	return &DomainChecker{
		domains: set,
		logger:  logger,
	}
}

// Matches reports whether the sender's domain is in the set.
// from may be a bare address or a header value such as "Jane <jane@example.com>".
func (c *DomainChecker) Matches(from string) bool {
	if c == nil || len(c.domains) == 0 {
		return false
	}

	domain := Domain(from)
	if domain == "" {
		return false
	}

	_, ok := c.domains[domain]
	if ok && c.logger != nil {
		c.logger.Debug("Sender domain matched", zap.String("domain", domain), zap.String("from", from))
	}
	return ok
}

// Domain returns the lowercased domain of an address or From header value
func Domain(from string) string {
	addr := strings.TrimSpace(from)
	if parsed, err := mail.ParseAddress(addr); err == nil {
		addr = parsed.Address
	}

	at := strings.LastIndex(addr, "@")
	if at < 0 || at == len(addr)-1 {
		return ""
	}
	return strings.ToLower(strings.Trim(addr[at+1:], "<> "))
}
