package main

import (
	"reflect"

	"github.com/aukilabs/go-tooling/pkg/cli"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/df07/go-geomquery/web/server"
	"github.com/segmentio/encoding/json"
)

// Keeps the config keys readable when the binary is obfuscated
var _ = reflect.TypeOf(config{})

type config struct {
	Port     int    `cli:"" env:"GEOMQUERY_PORT"      help:"Port to serve on."`
	LogLevel string `cli:"" env:"GEOMQUERY_LOG_LEVEL" help:"Log level (debug|info|warning|error)."`
	Help     bool   `cli:"" env:"-"                   help:"Show help."`
}

func main() {
	conf := config{
		Port:     8080,
		LogLevel: logs.InfoLevel.String(),
	}

	cli.Register().
		Help("Serves spatial queries over the built-in scenes.").
		Options(&conf)
	cli.Load()

	logs.SetLevel(logs.ParseLevel(conf.LogLevel))
	logs.Encoder = json.Marshal
	errors.Encoder = json.Marshal

	if err := server.NewServer(conf.Port).Start(); err != nil {
		logs.Fatal(errors.New("server stopped").Wrap(err))
	}
}
