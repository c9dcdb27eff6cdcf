package app

import (
	"go.uber.org/fx"

	"github.com/Additional-Code/procurement/internal/cache"
	"github.com/Additional-Code/procurement/internal/clock"
	"github.com/Additional-Code/procurement/internal/config"
	"github.com/Additional-Code/procurement/internal/database"
	"github.com/Additional-Code/procurement/internal/logger"
	"github.com/Additional-Code/procurement/internal/messaging"
	"github.com/Additional-Code/procurement/internal/migration"
	"github.com/Additional-Code/procurement/internal/observability"
	repositorypurchaseorder "github.com/Additional-Code/procurement/internal/repository/purchaseorder"
	grpcserver "github.com/Additional-Code/procurement/internal/server/grpc"
	httpserver "github.com/Additional-Code/procurement/internal/server/http"
	servicepurchaseorder "github.com/Additional-Code/procurement/internal/service/purchaseorder"
	transporthttp "github.com/Additional-Code/procurement/internal/transport/http"
	"github.com/Additional-Code/procurement/internal/worker"
	workerpurchaseorder "github.com/Additional-Code/procurement/internal/worker/purchaseorder"
)

// Core provides the foundational modules shared across executables.
var Core = fx.Options(
	config.Module,
	clock.Module,
	cache.Module,
	database.Module,
	logger.Module,
	messaging.Module,
	observability.Module,
	migration.Module,
	repositorypurchaseorder.Module,
	servicepurchaseorder.Module,
)

// HTTP wires the HTTP and gRPC transports on top of the core modules. Schema
// migrations are applied before either server starts listening.
var HTTP = fx.Options(
	Core,
	fx.Invoke(migration.ApplyOnStart),
	httpserver.Module,
	grpcserver.Module,
	transporthttp.Module,
)

// Worker exposes background worker processing.
var Worker = fx.Options(
	Core,
	worker.Module,
	workerpurchaseorder.Module,
)

// Module is the default application wiring.
var Module = HTTP
