// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package opcua implements the façade (C9): the public API an application
// uses to connect/disconnect, read/write/browse/call and subscribe,
// wiring the session registry, discovery, read/write executor, browse
// engine and subscription engine behind one Service interface.
package opcua

import "github.com/absmach/opcua-adapter/message"

// Config is the façade's own env-driven configuration, matching the
// recognized configuration fields of the specification's §6: the
// supportedApplicationTypes bitmask filtering discovery results, the
// default maxAge used by reads (0, or 2000ms under the compatibility-test
// toggle), and the bounded depth of the two delivery queues.
type Config struct {
	SupportedApplicationTypes uint8   `env:"MG_OPCUA_ADAPTER_SUPPORTED_APPLICATION_TYPES" envDefault:"15"`
	ReadMaxAgeMillis          float64 `env:"MG_OPCUA_ADAPTER_READ_MAX_AGE_MS"              envDefault:"0"`
	CompatibilityMaxAge       bool    `env:"MG_OPCUA_ADAPTER_COMPATIBILITY_MAX_AGE"        envDefault:"false"`
	QueueCapacity             int     `env:"MG_OPCUA_ADAPTER_QUEUE_CAPACITY"               envDefault:"256"`
}

// ApplicationTypeMask returns the configured supportedApplicationTypes as
// the domain bitmask type.
func (c Config) ApplicationTypeMask() message.ApplicationType {
	return message.ApplicationType(c.SupportedApplicationTypes)
}

// MaxAge resolves the effective maxAge passed to every Read call: the
// configured default, or 2000ms when the compatibility-test toggle is
// set, per §4.3.
func (c Config) MaxAge() float64 {
	if c.CompatibilityMaxAge {
		return 2000
	}
	return c.ReadMaxAgeMillis
}
