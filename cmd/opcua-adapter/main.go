// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package main contains the opcua-adapter main function to start the
// OPC UA adapter service.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/caarlos0/env/v10"

	"github.com/absmach/opcua-adapter/discovery"
	"github.com/absmach/opcua-adapter/internal"
	jaegerclient "github.com/absmach/opcua-adapter/internal/clients/jaeger"
	redisclient "github.com/absmach/opcua-adapter/internal/clients/redis"
	"github.com/absmach/opcua-adapter/internal/server"
	httpserver "github.com/absmach/opcua-adapter/internal/server/http"
	mglog "github.com/absmach/opcua-adapter/logger"
	"github.com/absmach/opcua-adapter/message"
	"github.com/absmach/opcua-adapter/opcua"
	opcuaapi "github.com/absmach/opcua-adapter/opcua/api"
	"github.com/absmach/opcua-adapter/opcua/client"
	opcuanats "github.com/absmach/opcua-adapter/opcua/nats"
	opcuaredis "github.com/absmach/opcua-adapter/opcua/redis"
	"github.com/absmach/opcua-adapter/queue"
	"github.com/absmach/opcua-adapter/pkg/uuid"
)

const (
	svcName        = "opcua-adapter"
	envPrefixHTTP  = "MG_OPCUA_ADAPTER_HTTP_"
	defSvcHTTPPort = "8180"

	discoveryCachePrefix = "opcua-adapter"
)

type config struct {
	LogLevel     string  `env:"MG_OPCUA_ADAPTER_LOG_LEVEL"           envDefault:"info"`
	InstanceID   string  `env:"MG_OPCUA_ADAPTER_INSTANCE_ID"         envDefault:""`
	JaegerURL    string  `env:"MG_JAEGER_URL"                        envDefault:"http://localhost:4318/v1/traces"`
	TraceRatio   float64 `env:"MG_JAEGER_TRACE_RATIO"                envDefault:"1.0"`
	DiscoveryURL string  `env:"MG_OPCUA_ADAPTER_DISCOVERY_CACHE_URL" envDefault:"redis://localhost:6379/0"`
	NatsURL      string  `env:"MG_OPCUA_ADAPTER_NATS_URL"            envDefault:"nats://localhost:4222"`
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())

	cfg := config{}
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("failed to load %s configuration: %s", svcName, err)
	}

	opcuaCfg := opcua.Config{}
	if err := env.Parse(&opcuaCfg); err != nil {
		log.Fatalf("failed to load %s opcua configuration: %s", svcName, err)
	}

	logger, err := mglog.New(os.Stdout, cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to init logger: %s", err)
	}

	var exitCode int
	defer mglog.ExitWithError(&exitCode)

	if cfg.InstanceID == "" {
		if cfg.InstanceID, err = uuid.New().ID(); err != nil {
			logger.Error(fmt.Sprintf("failed to generate instanceID: %s", err))
			exitCode = 1
			return
		}
	}

	httpServerConfig := server.Config{Port: defSvcHTTPPort}
	if err := env.ParseWithOptions(&httpServerConfig, env.Options{Prefix: envPrefixHTTP}); err != nil {
		logger.Error(fmt.Sprintf("failed to load %s HTTP server configuration: %s", svcName, err))
		exitCode = 1
		return
	}

	tp, err := jaegerclient.NewProvider(ctx, svcName, cfg.JaegerURL, cfg.InstanceID, cfg.TraceRatio)
	if err != nil {
		logger.Error(fmt.Sprintf("failed to init Jaeger: %s", err))
		exitCode = 1
		return
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("error shutting down tracer provider: %v", err))
		}
	}()

	rdb, err := redisclient.Connect(cfg.DiscoveryURL)
	if err != nil {
		logger.Error(fmt.Sprintf("failed to connect to discovery cache redis: %s", err))
		exitCode = 1
		return
	}
	defer rdb.Close()
	finder := opcuaredis.New(rdb, client.GopcuaFinder{}, discoveryCachePrefix, 0)

	pub, err := opcuanats.NewPublisher(cfg.NatsURL)
	if err != nil {
		logger.Error(fmt.Sprintf("failed to connect to NATS: %s", err))
		exitCode = 1
		return
	}
	defer pub.Close()

	svc := newService(opcuaCfg, finder, logger, pub)

	hs := httpserver.New(ctx, cancel, svcName, httpServerConfig, opcuaapi.MakeHandler(svc, cfg.InstanceID), logger)

	errs := make(chan error, 2)
	go func() {
		errs <- hs.Start()
	}()
	go func() {
		errs <- server.StopSignalHandler(ctx, cancel, logger, svcName, hs)
	}()

	if err := <-errs; err != nil {
		logger.Error(fmt.Sprintf("%s service terminated: %s", svcName, err))
	}
}

// newService wires the façade, the logging/metrics decorators and the
// dispatcher that drains the receive queue - application callbacks are
// log-only here since this binary's only consumer is the synchronous
// HTTP API plus the NATS REPORT fan-out wired through onReport.
func newService(cfg opcua.Config, finder discovery.Finder, logger *slog.Logger, pub opcuanats.Publisher) opcua.Service {
	dial := opcua.DefaultDialer()

	onStatus := func(event message.StatusEvent, endpoint *message.EndpointInfo) {
		logger.Info("status event", slog.String("event", string(event)), slog.String("endpoint", endpoint.EndpointURI))
	}
	onReport := func(msg *message.EdgeMessage) {
		if err := pub.Publish(msg); err != nil {
			logger.Warn("failed to publish report", slog.String("error", err.Error()))
		}
	}

	facade := opcua.New(cfg, dial, finder, logger, onStatus, onReport)
	facade.Configure(queue.Callbacks{
		OnResponse: func(msg *message.EdgeMessage) {
			logger.Info("response delivered", slog.String("endpoint", msg.Endpoint.EndpointURI), slog.String("result", string(msg.Result)))
		},
		OnBrowse: func(msg *message.EdgeMessage) {
			logger.Info("browse result delivered", slog.String("endpoint", msg.Endpoint.EndpointURI))
		},
		OnReport: func(msg *message.EdgeMessage) {
			logger.Info("report delivered", slog.String("endpoint", msg.Endpoint.EndpointURI))
		},
		OnError: func(msg *message.EdgeMessage) {
			logger.Warn("error message delivered", slog.String("endpoint", msg.Endpoint.EndpointURI), slog.String("result", string(msg.Result)))
		},
	})

	var svc opcua.Service = facade
	svc = opcuaapi.LoggingMiddleware(svc, logger)
	counter, latency := internal.MakeMetrics("opcua_adapter", "api")
	svc = opcuaapi.MetricsMiddleware(svc, counter, latency)

	return svc
}
