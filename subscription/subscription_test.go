// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package subscription_test

import (
	"context"
	"testing"
	"time"

	"github.com/absmach/opcua-adapter/message"
	"github.com/absmach/opcua-adapter/opcua/client"
	"github.com/absmach/opcua-adapter/pkg/errors"
	"github.com/absmach/opcua-adapter/queue"
	"github.com/absmach/opcua-adapter/subscription"
	"github.com/gopcua/opcua/ua"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSubscription struct {
	id         uint32
	monitorIDs []uint32
	monitorErr error

	unmonitorErr   error
	modifyItemsErr error
	modifySubErr   error
	modeErr        error
	publishErr     error
	cancelErr      error

	republishNotif *ua.NotificationMessage
	republishErr   error

	cancelled      bool
	publishingMode bool
}

var _ client.Subscription = (*fakeSubscription)(nil)

func (s *fakeSubscription) ID() uint32 { return s.id }

func (s *fakeSubscription) Monitor(_ context.Context, _ ua.TimestampsToReturn, reqs ...*client.MonitorRequest) ([]uint32, error) {
	if s.monitorErr != nil {
		return nil, s.monitorErr
	}
	ids := make([]uint32, len(reqs))
	for i := range reqs {
		if i < len(s.monitorIDs) {
			ids[i] = s.monitorIDs[i]
		} else {
			ids[i] = uint32(i + 1)
		}
	}
	return ids, nil
}

func (s *fakeSubscription) Unmonitor(context.Context, ...uint32) error { return s.unmonitorErr }

func (s *fakeSubscription) ModifyMonitoredItems(context.Context, ua.TimestampsToReturn, ...*client.MonitorRequest) error {
	return s.modifyItemsErr
}

func (s *fakeSubscription) ModifySubscription(context.Context, *client.SubscriptionParams) error {
	return s.modifySubErr
}

func (s *fakeSubscription) SetMonitoringMode(context.Context, ua.MonitoringMode, ...uint32) error {
	return s.modeErr
}

func (s *fakeSubscription) SetPublishingMode(_ context.Context, enabled bool) error {
	s.publishingMode = enabled
	return s.publishErr
}

func (s *fakeSubscription) Republish(context.Context, uint32) (*ua.NotificationMessage, error) {
	return s.republishNotif, s.republishErr
}

func (s *fakeSubscription) Cancel(context.Context) error {
	s.cancelled = true
	return s.cancelErr
}

type fakeClient struct {
	sub       client.Subscription
	createErr error
	notifyCh  chan<- *client.PublishNotification
}

var _ client.Client = (*fakeClient)(nil)

func (f *fakeClient) Connect(context.Context) error { return nil }
func (f *fakeClient) Close(context.Context) error   { return nil }

func (f *fakeClient) GetEndpoints(context.Context) ([]*ua.EndpointDescription, error) {
	return nil, nil
}
func (f *fakeClient) Read(context.Context, *ua.ReadRequest) (*ua.ReadResponse, error) {
	return nil, nil
}
func (f *fakeClient) Write(context.Context, *ua.WriteRequest) (*ua.WriteResponse, error) {
	return nil, nil
}
func (f *fakeClient) Browse(context.Context, *ua.BrowseRequest) (*ua.BrowseResponse, error) {
	return nil, nil
}
func (f *fakeClient) BrowseNext(context.Context, *ua.BrowseNextRequest) (*ua.BrowseNextResponse, error) {
	return nil, nil
}
func (f *fakeClient) Call(context.Context, *ua.CallMethodRequest) (*ua.CallMethodResult, error) {
	return nil, nil
}

func (f *fakeClient) CreateSubscription(_ context.Context, _ *client.SubscriptionParams, ch chan<- *client.PublishNotification) (client.Subscription, error) {
	f.notifyCh = ch
	return f.sub, f.createErr
}

func testEndpoint() *message.EndpointInfo {
	return &message.EndpointInfo{EndpointURI: "opc.tcp://localhost:4840"}
}

func testRequest(alias string) *message.Request {
	return &message.Request{
		NodeInfo: &message.NodeInfo{
			NodeID:     &message.NodeID{NamespaceIndex: 2, Type: message.IdentifierTypeInteger, Value: "1001"},
			ValueAlias: alias,
		},
		Sub: &message.SubRequest{
			Subtype:           message.SubCreate,
			SamplingInterval:  100,
			PublishingInterval: 100,
			PublishingEnabled: true,
		},
	}
}

func TestEngineCreateDuplicateAliasInBatch(t *testing.T) {
	e := subscription.New(queue.New(8), nil)
	fc := &fakeClient{sub: &fakeSubscription{id: 1, monitorIDs: []uint32{1, 2}}}

	_, res := e.Create(context.Background(), fc, testEndpoint(), "sess1", []*message.Request{
		testRequest("{2;i}temp"),
		testRequest("{2;i}temp"),
	})
	assert.Equal(t, message.StatusBadRequestCancelledByClient, res)
}

func TestEngineCreateAliasAlreadyRegistered(t *testing.T) {
	e := subscription.New(queue.New(8), nil)
	fc := &fakeClient{sub: &fakeSubscription{id: 1, monitorIDs: []uint32{1}}}

	_, res := e.Create(context.Background(), fc, testEndpoint(), "sess1", []*message.Request{testRequest("{2;i}temp")})
	require.Equal(t, message.StatusOK, res)

	_, res = e.Create(context.Background(), fc, testEndpoint(), "sess1", []*message.Request{testRequest("{2;i}temp")})
	assert.Equal(t, message.StatusBadRequestCancelledByClient, res)

	e.StopSession("sess1")
}

func TestEngineCreateStartsPumpAndDeliversReport(t *testing.T) {
	recv := queue.New(8)
	e := subscription.New(recv, nil)
	fc := &fakeClient{sub: &fakeSubscription{id: 7, monitorIDs: []uint32{3}}}

	var reported *message.EdgeMessage
	e.OnReport(func(m *message.EdgeMessage) { reported = m })

	_, res := e.Create(context.Background(), fc, testEndpoint(), "sess1", []*message.Request{testRequest("{2;i}temp")})
	require.Equal(t, message.StatusOK, res)
	require.NotNil(t, fc.notifyCh)

	fc.notifyCh <- &client.PublishNotification{
		SubscriptionID:  7,
		MonitoredItemID: 3,
		Value: &ua.DataValue{
			Status: ua.StatusOK,
			Value:  ua.MustVariant(int32(42)),
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	msg, err := recv.Dequeue(ctx)
	require.NoError(t, err)
	require.Equal(t, message.TypeReport, msg.Type)
	require.Len(t, msg.Responses, 1)
	assert.Equal(t, "{2;i}temp", msg.Responses[0].NodeInfo.ValueAlias)

	require.Eventually(t, func() bool { return reported != nil }, time.Second, 5*time.Millisecond)

	e.StopSession("sess1")
}

func TestEngineDeleteStopsPumpAndCancelsSubscription(t *testing.T) {
	e := subscription.New(queue.New(8), nil)
	sub := &fakeSubscription{id: 9, monitorIDs: []uint32{1}}
	fc := &fakeClient{sub: sub}

	_, res := e.Create(context.Background(), fc, testEndpoint(), "sess1", []*message.Request{testRequest("{2;i}temp")})
	require.Equal(t, message.StatusOK, res)

	_, res = e.Delete(context.Background(), testEndpoint(), "sess1", "{2;i}temp")
	require.Equal(t, message.StatusOK, res)
	assert.True(t, sub.cancelled)
}

func TestEngineDeleteUnknownSession(t *testing.T) {
	e := subscription.New(queue.New(8), nil)
	_, res := e.Delete(context.Background(), testEndpoint(), "sess-none", "{2;i}temp")
	assert.Equal(t, message.StatusBadNoSubscription, res)
}

func TestEngineDeleteUnknownAlias(t *testing.T) {
	e := subscription.New(queue.New(8), nil)
	fc := &fakeClient{sub: &fakeSubscription{id: 1, monitorIDs: []uint32{1}}}

	_, res := e.Create(context.Background(), fc, testEndpoint(), "sess1", []*message.Request{testRequest("{2;i}temp")})
	require.Equal(t, message.StatusOK, res)

	_, res = e.Delete(context.Background(), testEndpoint(), "sess1", "{2;i}missing")
	assert.Equal(t, message.StatusBadMonitoredItemIDInvalid, res)

	e.StopSession("sess1")
}

func TestEngineRepublishDowngradesMessageNotAvailable(t *testing.T) {
	e := subscription.New(queue.New(8), nil)
	sub := &fakeSubscription{id: 1, monitorIDs: []uint32{1}, republishErr: errors.New("ua: BadMessageNotAvailable")}
	fc := &fakeClient{sub: sub}

	_, res := e.Create(context.Background(), fc, testEndpoint(), "sess1", []*message.Request{testRequest("{2;i}temp")})
	require.Equal(t, message.StatusOK, res)

	_, res = e.Republish(context.Background(), testEndpoint(), "sess1", "{2;i}temp")
	assert.Equal(t, message.StatusBadMessageNotAvailable, res)

	e.StopSession("sess1")
}

func TestEngineModifyUnknownSession(t *testing.T) {
	e := subscription.New(queue.New(8), nil)
	_, res := e.Modify(context.Background(), testEndpoint(), "sess-none", testRequest("{2;i}temp"))
	assert.Equal(t, message.StatusBadNoSubscription, res)
}
