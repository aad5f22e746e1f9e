// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"log/slog"
	"time"

	"github.com/absmach/opcua-adapter/discovery"
	"github.com/absmach/opcua-adapter/message"
	"github.com/absmach/opcua-adapter/opcua"
	"github.com/absmach/opcua-adapter/queue"
)

var _ opcua.Service = (*loggingMiddleware)(nil)

type loggingMiddleware struct {
	logger *slog.Logger
	svc    opcua.Service
}

// LoggingMiddleware wraps svc, logging every call's duration and outcome.
func LoggingMiddleware(svc opcua.Service, logger *slog.Logger) opcua.Service {
	return &loggingMiddleware{logger: logger, svc: svc}
}

func (lm *loggingMiddleware) Configure(cbs queue.Callbacks) {
	lm.svc.Configure(cbs)
}

func (lm *loggingMiddleware) CreateServer(ctx context.Context, endpoint *message.EndpointInfo) (err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.String("endpoint", endpoint.EndpointURI),
		}
		if err != nil {
			args = append(args, slog.String("error", err.Error()))
			lm.logger.Warn("Create server failed", args...)
			return
		}
		lm.logger.Info("Create server completed successfully", args...)
	}(time.Now())
	return lm.svc.CreateServer(ctx, endpoint)
}

func (lm *loggingMiddleware) CloseServer(ctx context.Context, endpoint *message.EndpointInfo) (err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.String("endpoint", endpoint.EndpointURI),
		}
		if err != nil {
			args = append(args, slog.String("error", err.Error()))
			lm.logger.Warn("Close server failed", args...)
			return
		}
		lm.logger.Info("Close server completed successfully", args...)
	}(time.Now())
	return lm.svc.CloseServer(ctx, endpoint)
}

func (lm *loggingMiddleware) ConnectClient(ctx context.Context, endpointURI string) (connected bool, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.String("endpoint", endpointURI),
			slog.Bool("connected", connected),
		}
		if err != nil {
			args = append(args, slog.String("error", err.Error()))
			lm.logger.Warn("Connect client failed", args...)
			return
		}
		lm.logger.Info("Connect client completed successfully", args...)
	}(time.Now())
	return lm.svc.ConnectClient(ctx, endpointURI)
}

func (lm *loggingMiddleware) DisconnectClient(ctx context.Context, endpoint *message.EndpointInfo) (err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.String("endpoint", endpoint.EndpointURI),
		}
		if err != nil {
			args = append(args, slog.String("error", err.Error()))
			lm.logger.Warn("Disconnect client failed", args...)
			return
		}
		lm.logger.Info("Disconnect client completed successfully", args...)
	}(time.Now())
	return lm.svc.DisconnectClient(ctx, endpoint)
}

func (lm *loggingMiddleware) FindServers(ctx context.Context, discoveryEndpointURI string, serverURIs, localeIDs []string) (found []discovery.FoundServer, errs []error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.String("endpoint", discoveryEndpointURI),
			slog.Int("found", len(found)),
		}
		if len(errs) > 0 {
			lm.logger.Warn("Find servers completed with errors", args...)
			return
		}
		lm.logger.Info("Find servers completed successfully", args...)
	}(time.Now())
	return lm.svc.FindServers(ctx, discoveryEndpointURI, serverURIs, localeIDs)
}

func (lm *loggingMiddleware) GetEndpointInfo(ctx context.Context, discoveryEndpointURI string) (endpoints []*message.EndpointInfo, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.String("endpoint", discoveryEndpointURI),
			slog.Int("count", len(endpoints)),
		}
		if err != nil {
			args = append(args, slog.String("error", err.Error()))
			lm.logger.Warn("Get endpoint info failed", args...)
			return
		}
		lm.logger.Info("Get endpoint info completed successfully", args...)
	}(time.Now())
	return lm.svc.GetEndpointInfo(ctx, discoveryEndpointURI)
}

func (lm *loggingMiddleware) ReadNode(ctx context.Context, endpoint *message.EndpointInfo, cmd message.Command, nodes []*message.NodeInfo) (resp *message.EdgeMessage, result message.Result) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.String("endpoint", endpoint.EndpointURI),
			slog.String("result", string(result)),
		}
		if result != message.StatusOK {
			lm.logger.Warn("Read node failed", args...)
			return
		}
		lm.logger.Info("Read node completed successfully", args...)
	}(time.Now())
	return lm.svc.ReadNode(ctx, endpoint, cmd, nodes)
}

func (lm *loggingMiddleware) WriteNode(ctx context.Context, endpoint *message.EndpointInfo, requests []*message.Request) (resp *message.EdgeMessage, result message.Result) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.String("endpoint", endpoint.EndpointURI),
			slog.String("result", string(result)),
		}
		if result != message.StatusOK {
			lm.logger.Warn("Write node failed", args...)
			return
		}
		lm.logger.Info("Write node completed successfully", args...)
	}(time.Now())
	return lm.svc.WriteNode(ctx, endpoint, requests)
}

func (lm *loggingMiddleware) BrowseNode(ctx context.Context, endpoint *message.EndpointInfo, reqs []*message.Request) (result message.Result) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.String("endpoint", endpoint.EndpointURI),
			slog.String("result", string(result)),
		}
		if result != message.StatusOK {
			lm.logger.Warn("Browse node failed", args...)
			return
		}
		lm.logger.Info("Browse node completed successfully", args...)
	}(time.Now())
	return lm.svc.BrowseNode(ctx, endpoint, reqs)
}

func (lm *loggingMiddleware) BrowseViews(ctx context.Context, endpoint *message.EndpointInfo, reqs []*message.Request) (views []*message.ViewNodeInfo, result message.Result) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.String("endpoint", endpoint.EndpointURI),
			slog.Int("views", len(views)),
		}
		if result != message.StatusOK {
			lm.logger.Warn("Browse views failed", args...)
			return
		}
		lm.logger.Info("Browse views completed successfully", args...)
	}(time.Now())
	return lm.svc.BrowseViews(ctx, endpoint, reqs)
}

func (lm *loggingMiddleware) BrowseNext(ctx context.Context, endpoint *message.EndpointInfo, reqs []*message.Request, continuation []*message.ContinuationPoint) (result message.Result) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.String("endpoint", endpoint.EndpointURI),
			slog.String("result", string(result)),
		}
		if result != message.StatusOK {
			lm.logger.Warn("Browse next failed", args...)
			return
		}
		lm.logger.Info("Browse next completed successfully", args...)
	}(time.Now())
	return lm.svc.BrowseNext(ctx, endpoint, reqs, continuation)
}

func (lm *loggingMiddleware) CallMethod(ctx context.Context, endpoint *message.EndpointInfo, req *message.Request) (resp *message.EdgeMessage, result message.Result) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.String("endpoint", endpoint.EndpointURI),
			slog.String("result", string(result)),
		}
		if result != message.StatusOK {
			lm.logger.Warn("Call method failed", args...)
			return
		}
		lm.logger.Info("Call method completed successfully", args...)
	}(time.Now())
	return lm.svc.CallMethod(ctx, endpoint, req)
}

func (lm *loggingMiddleware) HandleSubscription(ctx context.Context, endpoint *message.EndpointInfo, reqs []*message.Request) (resp *message.EdgeMessage, result message.Result) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.String("endpoint", endpoint.EndpointURI),
			slog.String("result", string(result)),
		}
		if result != message.StatusOK {
			lm.logger.Warn("Handle subscription failed", args...)
			return
		}
		lm.logger.Info("Handle subscription completed successfully", args...)
	}(time.Now())
	return lm.svc.HandleSubscription(ctx, endpoint, reqs)
}

func (lm *loggingMiddleware) ShowNodeList(ctx context.Context) (endpoints []*message.EndpointInfo) {
	defer func(begin time.Time) {
		lm.logger.Info("Show node list completed successfully",
			slog.String("duration", time.Since(begin).String()),
			slog.Int("count", len(endpoints)),
		)
	}(time.Now())
	return lm.svc.ShowNodeList(ctx)
}
