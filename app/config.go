package app

import (
	"flag"

	"github.com/grafana/dskit/flagext"
	"github.com/grafana/dskit/server"

	"github.com/zachfi/zkit/pkg/tracing"

	"github.com/zachfi/radioproxy/modules/proxy"
)

type Config struct {
	Target  string         `yaml:"target"`
	Tracing tracing.Config `yaml:"tracing,omitempty"`
	Server  server.Config  `yaml:"server,omitempty"`
	Proxy   proxy.Config   `yaml:"proxy,omitempty"`
}

func (c *Config) RegisterFlagsAndApplyDefaults(prefix string, f *flag.FlagSet) {
	f.StringVar(&c.Target, "target", All, "Module to run.")

	flagext.DefaultValues(&c.Server)
	f.IntVar(&c.Server.HTTPListenPort, "server.http-listen-port", 8080, "HTTP server listen port.")
	f.IntVar(&c.Server.GRPCListenPort, "server.grpc-listen-port", 9090, "gRPC server listen port.")
	f.Var(&c.Server.LogLevel, "log.level", "Only log messages with the given severity or above. Valid levels: [debug, info, warn, error]")

	c.Tracing.RegisterFlagsAndApplyDefaults("tracing", f)
	c.Proxy.RegisterFlagsAndApplyDefaults("proxy", f)
}
