/*
Command plugmux starts a dispatcher instance from command line flags or
a YAML config file.

The binary itself links no plugins, real deployments embed
plugmux.Run with their own loaders. Running it stand-alone serves an
empty registry, which is enough to smoke test the listener, the path
prefix handling and the plugins listing endpoint.
*/
package main

import (
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/plugmux/plugmux"
	"github.com/plugmux/plugmux/config"
)

func main() {
	cfg := config.NewConfig()
	if err := cfg.Parse(os.Args[1:]); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	log.Fatal(plugmux.Run(plugmux.Options{
		Address:              cfg.Address,
		PathPrefix:           cfg.PathPrefix,
		ExperimentalPlugins:  cfg.ExperimentalPlugins,
		MetricsListener:      cfg.MetricsListener,
		ApplicationLogPrefix: cfg.ApplicationLogPrefix,
		ApplicationLogLevel:  cfg.ApplicationLogLevel,
		AccessLogDisabled:    cfg.AccessLogDisabled,
		AccessLogJSONEnabled: cfg.AccessLogJSONEnabled,
	}))
}
