// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package discovery implements FindServers/GetEndpoints and the
// application-type and application-URI validation filters applied to
// their results.
package discovery

import (
	"context"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/absmach/opcua-adapter/message"
	"github.com/absmach/opcua-adapter/pkg/errors"
)

var (
	errApplicationType = errors.New("application type not in supported mask")
	errApplicationURI  = errors.New("invalid application URI")
	errServerURIMatch  = errors.New("application URI does not match any requested server URI")
	errLocaleMatch     = errors.New("application name locale does not match any requested locale")
)

var ipv4Pattern = regexp.MustCompile(`^(\d{1,3})\.(\d{1,3})\.(\d{1,3})\.(\d{1,3})$`)

// FoundServer is one FindServers result candidate, prior to filtering.
type FoundServer struct {
	ApplicationURI  string
	ApplicationName string
	Locale          string
	Type            message.ApplicationType
	Endpoint        *message.EndpointInfo
}

// ValidateApplicationType reports whether appType is one of the bits set
// in supportedMask.
func ValidateApplicationType(appType message.ApplicationType, supportedMask message.ApplicationType) bool {
	return appType&supportedMask != 0
}

// ValidateApplicationURI validates an application URI per the discovery
// grammar: length >= 5; a URI not starting with "urn:" is parsed as an
// endpoint URL and must have a non-empty host; a host beginning with "1"
// or "2" is treated as an IPv4 literal and must match d.d.d.d with each
// segment in [0,255], 1-3 digits, exactly three dots, total length in
// [7,15].
func ValidateApplicationURI(uri string) bool {
	if len(uri) < 5 {
		return false
	}
	if strings.HasPrefix(uri, "urn:") {
		return true
	}
	u, err := url.Parse(uri)
	if err != nil || u.Host == "" {
		return false
	}
	host := u.Hostname()
	if strings.HasPrefix(host, "1") || strings.HasPrefix(host, "2") {
		return validIPv4Literal(host)
	}
	return true
}

func validIPv4Literal(host string) bool {
	if len(host) < 7 || len(host) > 15 {
		return false
	}
	m := ipv4Pattern.FindStringSubmatch(host)
	if m == nil {
		return false
	}
	for _, seg := range m[1:] {
		n, err := strconv.Atoi(seg)
		if err != nil || n < 0 || n > 255 {
			return false
		}
	}
	return true
}

// Filter reduces candidates to those whose application type matches
// supportedMask and whose application URI validates. When serverURIs is
// non-empty, a candidate's application URI must byte-for-byte match one
// of them. When localeIDs is non-empty, the candidate's locale must match
// one of them. Every violation is reported via errs, one entry per
// rejected candidate, but does not stop the scan - the façade is expected
// to log and drop, not abort the whole FindServers/GetEndpoints call.
func Filter(candidates []FoundServer, supportedMask message.ApplicationType, serverURIs, localeIDs []string) (kept []FoundServer, errs []error) {
	for _, c := range candidates {
		if !ValidateApplicationType(c.Type, supportedMask) {
			errs = append(errs, errors.Wrap(errApplicationType, errors.New(c.ApplicationURI)))
			continue
		}
		if !ValidateApplicationURI(c.ApplicationURI) {
			errs = append(errs, errors.Wrap(errApplicationURI, errors.New(c.ApplicationURI)))
			continue
		}
		if len(serverURIs) > 0 && !contains(serverURIs, c.ApplicationURI) {
			errs = append(errs, errors.Wrap(errServerURIMatch, errors.New(c.ApplicationURI)))
			continue
		}
		if len(localeIDs) > 0 && !contains(localeIDs, c.Locale) {
			errs = append(errs, errors.Wrap(errLocaleMatch, errors.New(c.ApplicationURI)))
			continue
		}
		kept = append(kept, c)
	}
	return kept, errs
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// Finder is the subset of the underlying transport discovery needs -
// FindServers and GetEndpoints, both out of scope for the wire codec
// itself and consumed as external collaborators.
type Finder interface {
	FindServers(ctx context.Context, discoveryEndpointURI string) ([]FoundServer, error)
	GetEndpoints(ctx context.Context, discoveryEndpointURI string) ([]*message.EndpointInfo, error)
}

// Service performs discovery against a Finder and applies the validation
// filters.
type Service struct {
	finder        Finder
	supportedMask message.ApplicationType
}

// New builds a discovery Service. supportedMask is the
// supportedApplicationTypes bitmask from configuration.
func New(finder Finder, supportedMask message.ApplicationType) *Service {
	return &Service{finder: finder, supportedMask: supportedMask}
}

// FindServers discovers servers at discoveryEndpointURI and returns those
// passing the application-type/URI/serverURI/locale filters.
func (s *Service) FindServers(ctx context.Context, discoveryEndpointURI string, serverURIs, localeIDs []string) ([]FoundServer, []error) {
	candidates, err := s.finder.FindServers(ctx, discoveryEndpointURI)
	if err != nil {
		return nil, []error{err}
	}
	kept, errs := Filter(candidates, s.supportedMask, serverURIs, localeIDs)
	return kept, errs
}

// GetEndpoints returns the endpoints at discoveryEndpointURI, restricted
// to the supportedApplicationTypes mask.
func (s *Service) GetEndpoints(ctx context.Context, discoveryEndpointURI string) ([]*message.EndpointInfo, error) {
	endpoints, err := s.finder.GetEndpoints(ctx, discoveryEndpointURI)
	if err != nil {
		return nil, err
	}
	var kept []*message.EndpointInfo
	for _, e := range endpoints {
		if ValidateApplicationType(e.Config.ApplicationType, s.supportedMask) {
			kept = append(kept, e)
		}
	}
	return kept, nil
}
