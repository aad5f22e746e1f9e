// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package opcua

import (
	"context"

	gopcua "github.com/gopcua/opcua"

	"github.com/absmach/opcua-adapter/opcua/client"
	"github.com/absmach/opcua-adapter/registry"
)

// DefaultDialer returns a registry.Dialer backed by the real gopcua wire
// client, the production collaborator named in §6.
func DefaultDialer(opts ...gopcua.Option) registry.Dialer {
	return func(ctx context.Context, endpointURI string) (client.Client, error) {
		return client.Dial(ctx, endpointURI, opts...)
	}
}
