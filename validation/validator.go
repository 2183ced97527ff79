// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package validation

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"regexp"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegion is the region phone numbers are validated against.
const DefaultRegion = "IN"

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

	// Ten digits, mobile prefix. Matches the national format only; country
	// codes and separators are rejected.
	phonePattern = regexp.MustCompile(`^[6-9]\d{9}$`)
)

// Throwaway mail providers whose addresses are rejected outright.
var defaultDisposableDomains = []string{
	"mailinator.com",
	"tempmail.com",
	"temp-mail.org",
	"10minutemail.com",
	"guerrillamail.com",
	"yopmail.com",
	"trashmail.com",
	"throwawaymail.com",
}

// MXResolver looks up the mail exchanger records of a domain.
type MXResolver func(ctx context.Context, domain string) ([]*net.MX, error)

// Validator checks contact details collected during a conversation.
type Validator struct {
	region     string
	disposable map[string]struct{}
	lookupMX   MXResolver
	logger     *slog.Logger
}

// Option configures a Validator.
type Option func(*Validator) error

// WithRegion sets the region phone numbers are parsed against.
func WithRegion(region string) Option {
	return func(v *Validator) error {
		if region == "" {
			return fmt.Errorf("region cannot be empty")
		}
		v.region = region
		return nil
	}
}

// WithDisposableDomains replaces the disposable-domain denylist.
func WithDisposableDomains(domains []string) Option {
	return func(v *Validator) error {
		v.disposable = make(map[string]struct{}, len(domains))
		for _, domain := range domains {
			v.disposable[strings.ToLower(domain)] = struct{}{}
		}
		return nil
	}
}

// WithMXResolver overrides the DNS MX lookup. Tests inject a stub here.
func WithMXResolver(resolver MXResolver) Option {
	return func(v *Validator) error {
		if resolver == nil {
			return fmt.Errorf("resolver cannot be nil")
		}
		v.lookupMX = resolver
		return nil
	}
}

// WithLogger sets the logger used by the validator.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Validator) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		v.logger = logger
		return nil
	}
}

// NewValidator creates a Validator with the default region, denylist and
// system DNS resolver.
func NewValidator(opts ...Option) (*Validator, error) {
	v := &Validator{
		region:   DefaultRegion,
		lookupMX: net.DefaultResolver.LookupMX,
		logger:   slog.Default(),
	}

	v.disposable = make(map[string]struct{}, len(defaultDisposableDomains))
	for _, domain := range defaultDisposableDomains {
		v.disposable[domain] = struct{}{}
	}

	for _, opt := range opts {
		if err := opt(v); err != nil {
			return nil, err
		}
	}

	v.logger = v.logger.With("component", "validation")
	return v, nil
}

// ValidateEmail reports whether email is acceptable: well-formed, not from a
// disposable provider, and with a domain that publishes MX records.
func (v *Validator) ValidateEmail(ctx context.Context, email string) bool {
	email = strings.TrimSpace(email)
	if !emailPattern.MatchString(email) {
		v.logger.Debug("email rejected by syntax check")
		return false
	}

	domain := strings.ToLower(email[strings.LastIndex(email, "@")+1:])
	if _, banned := v.disposable[domain]; banned {
		v.logger.Debug("email rejected, disposable domain", "domain", domain)
		return false
	}

	records, err := v.lookupMX(ctx, domain)
	if err != nil || len(records) == 0 {
		v.logger.Debug("email rejected, no MX records", "domain", domain, "err", err)
		return false
	}
	return true
}

// ValidatePhoneNumber reports whether phone is a valid mobile number in the
// configured region, written in the plain national format.
func (v *Validator) ValidatePhoneNumber(phone string) bool {
	phone = strings.TrimSpace(phone)
	if !phonePattern.MatchString(phone) {
		v.logger.Debug("phone rejected by pattern check")
		return false
	}

	parsed, err := phonenumbers.Parse(phone, v.region)
	if err != nil {
		v.logger.Debug("phone rejected, unparseable", "err", err)
		return false
	}
	if !phonenumbers.IsValidNumberForRegion(parsed, v.region) {
		v.logger.Debug("phone rejected, invalid for region", "region", v.region)
		return false
	}
	return true
}
