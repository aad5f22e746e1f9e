// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"

	"github.com/absmach/opcua-adapter/discovery"
	"github.com/absmach/opcua-adapter/message"
	"github.com/gopcua/opcua"
	"github.com/gopcua/opcua/ua"
)

// GopcuaFinder implements discovery.Finder against the wire library's own
// pre-connect discovery calls (opcua.FindServers, opcua.GetEndpoints),
// which - unlike every other service in Client - take the discovery
// endpoint URI directly rather than going through an established session,
// matching the call shape grounded in
// other_examples/920d4b42_bruegth-opentelemetry-collector-opcua-receiver__receiver-opcua-client.go.go's
// Connect method.
type GopcuaFinder struct{}

func (GopcuaFinder) FindServers(ctx context.Context, discoveryEndpointURI string) ([]discovery.FoundServer, error) {
	servers, err := opcua.FindServers(ctx, discoveryEndpointURI)
	if err != nil {
		return nil, err
	}
	out := make([]discovery.FoundServer, 0, len(servers))
	for _, srv := range servers {
		out = append(out, discovery.FoundServer{
			ApplicationURI:  srv.ApplicationURI,
			ApplicationName: srv.ApplicationName.Text,
			Locale:          srv.ApplicationName.Locale,
			Type:            applicationType(srv.ApplicationType),
			Endpoint: &message.EndpointInfo{
				EndpointURI: firstOrEmpty(srv.DiscoveryURLs),
				Config: message.ApplicationConfig{
					ApplicationURI:      srv.ApplicationURI,
					ApplicationName:     srv.ApplicationName.Text,
					ProductURI:          srv.ProductURI,
					ApplicationType:     applicationType(srv.ApplicationType),
					GatewayURI:          srv.GatewayServerURI,
					DiscoveryProfileURI: srv.DiscoveryProfileURI,
					DiscoveryURLs:       append([]string(nil), srv.DiscoveryURLs...),
				},
			},
		})
	}
	return out, nil
}

func (GopcuaFinder) GetEndpoints(ctx context.Context, discoveryEndpointURI string) ([]*message.EndpointInfo, error) {
	endpoints, err := opcua.GetEndpoints(ctx, discoveryEndpointURI)
	if err != nil {
		return nil, err
	}
	out := make([]*message.EndpointInfo, 0, len(endpoints))
	for _, ep := range endpoints {
		info := &message.EndpointInfo{
			EndpointURI:         ep.EndpointURL,
			SecurityPolicyURI:   ep.SecurityPolicyURI,
			TransportProfileURI: ep.TransportProfileURI,
			SecurityMode:        securityMode(ep.SecurityMode),
			SecurityLevel:       uint8(ep.SecurityLevel),
		}
		if ep.Server != nil {
			info.Config = message.ApplicationConfig{
				ApplicationURI:      ep.Server.ApplicationURI,
				ApplicationName:     ep.Server.ApplicationName.Text,
				ProductURI:          ep.Server.ProductURI,
				ApplicationType:     applicationType(ep.Server.ApplicationType),
				GatewayURI:          ep.Server.GatewayServerURI,
				DiscoveryProfileURI: ep.Server.DiscoveryProfileURI,
				DiscoveryURLs:       append([]string(nil), ep.Server.DiscoveryURLs...),
			}
		}
		out = append(out, info)
	}
	return out, nil
}

func applicationType(t ua.ApplicationType) message.ApplicationType {
	switch t {
	case ua.ApplicationTypeServer:
		return message.ApplicationTypeServer
	case ua.ApplicationTypeClient:
		return message.ApplicationTypeClient
	case ua.ApplicationTypeClientAndServer:
		return message.ApplicationTypeClientAndServer
	case ua.ApplicationTypeDiscoveryServer:
		return message.ApplicationTypeDiscoveryServer
	default:
		return 0
	}
}

func securityMode(m ua.MessageSecurityMode) message.SecurityMode {
	switch m {
	case ua.MessageSecurityModeSign:
		return message.SecurityModeSign
	case ua.MessageSecurityModeSignAndEncrypt:
		return message.SecurityModeSignAndEncrypt
	default:
		return message.SecurityModeNone
	}
}

func firstOrEmpty(urls []string) string {
	if len(urls) == 0 {
		return ""
	}
	return urls[0]
}
