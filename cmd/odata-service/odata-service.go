package main

import (
	"context"
	"net/http"
	"os"

	"github.com/diwise/odata-service/internal/pkg/application/provider"
	"github.com/diwise/odata-service/internal/pkg/infrastructure/router"
	api "github.com/diwise/odata-service/internal/pkg/presentation/api/odata"
	"github.com/diwise/service-chassis/pkg/infrastructure/buildinfo"
	"github.com/diwise/service-chassis/pkg/infrastructure/env"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y"
)

const appName string = "odata-service"

func main() {
	appVersion := buildinfo.SourceVersion()

	ctx, log, cleanup := o11y.Init(context.Background(), appName, appVersion, "json")
	defer cleanup()

	cfg, err := loadProviderConfig(ctx)
	if err != nil {
		log.Error("failed to load configuration", "err", err.Error())
		os.Exit(1)
	}

	registry, sources, err := newDataModel()
	if err != nil {
		log.Error("failed to build data model", "err", err.Error())
		os.Exit(1)
	}

	serviceRoot := env.GetVariableOrDefault(ctx, "SERVICE_ROOT", "/")

	app, err := provider.New(ctx, *cfg, registry, sources, serviceRoot)
	if err != nil {
		log.Error("failed to configure provider", "err", err.Error())
		os.Exit(1)
	}

	r := router.New(appName)

	err = api.RegisterHandlers(ctx, r, serviceRoot, app)
	if err != nil {
		log.Error("failed to register handlers", "err", err.Error())
		os.Exit(1)
	}

	port := env.GetVariableOrDefault(ctx, "SERVICE_PORT", "8080")
	log.Info("starting to listen for connections", "port", port)

	err = http.ListenAndServe(":"+port, r)
	if err != nil {
		log.Error("failed to listen for connections", "err", err.Error())
		os.Exit(1)
	}
}

func loadProviderConfig(ctx context.Context) (*provider.Config, error) {
	configPath := env.GetVariableOrDefault(ctx, "ODATA_CONFIG_FILE", "")
	if configPath == "" {
		return &provider.Config{Namespace: "DataServices"}, nil
	}

	f, err := os.Open(configPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return provider.LoadConfiguration(f)
}
