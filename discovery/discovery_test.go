// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package discovery_test

import (
	"context"
	"testing"

	"github.com/absmach/opcua-adapter/discovery"
	"github.com/absmach/opcua-adapter/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateApplicationURI(t *testing.T) {
	cases := map[string]struct {
		uri  string
		want bool
	}{
		"too short":           {"ab", false},
		"urn scheme":          {"urn:freeopcua:server", true},
		"endpoint url":        {"opc.tcp://my-plc.local:4840", true},
		"no host":             {"opc.tcp://", false},
		"valid ipv4 literal":  {"opc.tcp://192.168.1.10:4840", true},
		"invalid ipv4 octet":  {"opc.tcp://192.168.1.999:4840", false},
		"ipv4-looking but 1x": {"opc.tcp://1.2.3.4:4840", true},
	}
	for name, tc := range cases {
		assert.Equal(t, tc.want, discovery.ValidateApplicationURI(tc.uri), name)
	}
}

type fakeFinder struct {
	servers   []discovery.FoundServer
	endpoints []*message.EndpointInfo
}

func (f *fakeFinder) FindServers(context.Context, string) ([]discovery.FoundServer, error) {
	return f.servers, nil
}

func (f *fakeFinder) GetEndpoints(context.Context, string) ([]*message.EndpointInfo, error) {
	return f.endpoints, nil
}

func TestFindServersFiltersByApplicationType(t *testing.T) {
	finder := &fakeFinder{servers: []discovery.FoundServer{
		{ApplicationURI: "urn:server-a", Type: message.ApplicationTypeServer},
		{ApplicationURI: "urn:discovery-a", Type: message.ApplicationTypeDiscoveryServer},
	}}
	svc := discovery.New(finder, message.ApplicationTypeServer)

	kept, errs := svc.FindServers(context.Background(), "opc.tcp://localhost:4840", nil, nil)
	require.Len(t, kept, 1)
	assert.Equal(t, "urn:server-a", kept[0].ApplicationURI)
	assert.Len(t, errs, 1)
}

func TestFindServersRequiresExactServerURIMatch(t *testing.T) {
	finder := &fakeFinder{servers: []discovery.FoundServer{
		{ApplicationURI: "urn:server-a", Type: message.ApplicationTypeServer},
	}}
	svc := discovery.New(finder, message.ApplicationTypeServer)

	kept, errs := svc.FindServers(context.Background(), "opc.tcp://localhost:4840", []string{"urn:server-b"}, nil)
	assert.Empty(t, kept)
	assert.Len(t, errs, 1)

	kept, errs = svc.FindServers(context.Background(), "opc.tcp://localhost:4840", []string{"urn:server-a"}, nil)
	assert.Len(t, kept, 1)
	assert.Empty(t, errs)
}

func TestGetEndpointsFiltersByApplicationType(t *testing.T) {
	finder := &fakeFinder{endpoints: []*message.EndpointInfo{
		{EndpointURI: "opc.tcp://localhost:4840", Config: message.ApplicationConfig{ApplicationType: message.ApplicationTypeServer}},
		{EndpointURI: "opc.tcp://localhost:4841", Config: message.ApplicationConfig{ApplicationType: message.ApplicationTypeDiscoveryServer}},
	}}
	svc := discovery.New(finder, message.ApplicationTypeServer|message.ApplicationTypeClientAndServer)

	kept, err := svc.GetEndpoints(context.Background(), "opc.tcp://localhost:4840")
	require.NoError(t, err)
	require.Len(t, kept, 1)
	assert.Equal(t, "opc.tcp://localhost:4840", kept[0].EndpointURI)
}
