// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package nats

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/absmach/opcua-adapter/message"
)

func TestSubjectFor(t *testing.T) {
	cases := []struct {
		name string
		resp *message.Response
		want string
	}{
		{
			name: "with value alias",
			resp: &message.Response{NodeInfo: &message.NodeInfo{ValueAlias: "{2;i}Temperature"}},
			want: "opcua.report.{2;i}Temperature",
		},
		{
			name: "no node info",
			resp: &message.Response{},
			want: "opcua.report",
		},
		{
			name: "empty alias",
			resp: &message.Response{NodeInfo: &message.NodeInfo{}},
			want: "opcua.report",
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, subjectFor(c.resp))
		})
	}
}
