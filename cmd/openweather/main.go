package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	// Packages
	kong "github.com/alecthomas/kong"
	config "github.com/mutablelogic/go-weather/pkg/config"
	openweather "github.com/mutablelogic/go-weather/pkg/openweather"
	tool "github.com/mutablelogic/go-weather/pkg/tool"
	otel "go.opentelemetry.io/otel"
	trace "go.opentelemetry.io/otel/trace"
	zap "go.uber.org/zap"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

type Globals struct {
	// Debugging
	Debug bool `name:"debug" help:"Enable debug logging (to stderr)"`

	// Configuration sources
	ConfigFile string   `name:"config" type:"path" placeholder:"FILE" help:"YAML configuration file"`
	EnvFile    []string `name:"env-file" default:".env" placeholder:"FILE" help:"Environment files, skipped when missing"`

	// Provider settings, overriding the configuration file and environment
	APIKey   string        `name:"api-key" placeholder:"KEY" help:"OpenWeatherMap API key (or OPENWEATHER_API_KEY)"`
	Endpoint string        `name:"endpoint" placeholder:"URL" help:"Provider endpoint (or OPENWEATHER_ENDPOINT)"`
	Units    string        `name:"units" placeholder:"UNITS" help:"metric, imperial or standard (or OPENWEATHER_UNITS)"`
	Lang     string        `name:"lang" placeholder:"LANG" help:"Language for descriptions (or OPENWEATHER_LANG)"`
	Timeout  time.Duration `name:"timeout" placeholder:"DURATION" help:"Timeout per provider call (or OPENWEATHER_TIMEOUT)"`

	// Context
	ctx      context.Context
	log      *zap.Logger
	tracer   trace.Tracer
	execName string
}

type CLI struct {
	Globals

	// Commands
	MCPCommands
	WeatherCommands
	ToolCommands
	VersionCommands
}

////////////////////////////////////////////////////////////////////////////////
// GLOBALS

const tracerName = "github.com/mutablelogic/go-weather"

////////////////////////////////////////////////////////////////////////////////
// MAIN

func main() {
	// Create a cli parser
	cli := CLI{}
	cmd := kong.Parse(&cli,
		kong.Name(execName()),
		kong.Description("Weather tools for agents, backed by OpenWeatherMap"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
	)

	// Create a logger which never writes to stdout
	log, err := newLogger(cli.Debug)
	cmd.FatalIfErrorf(err)
	defer log.Sync()

	// Create a context
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cli.Globals.ctx = ctx
	cli.Globals.log = log
	cli.Globals.tracer = otel.Tracer(tracerName)
	cli.Globals.execName = execName()

	// Run the command
	if err := cmd.Run(&cli.Globals); err != nil {
		cmd.FatalIfErrorf(err)
		return
	}
}

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Config returns the configuration with the command-line flags applied
func (g *Globals) Config() (config.Config, error) {
	c, err := config.Load(g.ConfigFile, g.EnvFile...)
	if err != nil {
		return c, err
	}
	c.Merge(config.Config{
		APIKey:   g.APIKey,
		Endpoint: g.Endpoint,
		Units:    g.Units,
		Language: g.Lang,
		Timeout:  g.Timeout,
	})
	g.log.Debug("configuration", zap.Stringer("config", c))
	return c, nil
}

// Client returns a gateway client, or a configuration error
func (g *Globals) Client() (*openweather.Client, error) {
	c, err := g.Config()
	if err != nil {
		return nil, err
	}
	return c.Client(g.log, g.tracer)
}

// Toolkit returns the weather tools
func (g *Globals) Toolkit() (*tool.Toolkit, error) {
	client, err := g.Client()
	if err != nil {
		return nil, err
	}
	return tool.NewToolkit(tool.WithLogger(g.log), tool.WithTools(client.Tools()...))
}

// Flags returns the global flags which were set, for passing on to a
// subprocess. The API key is never included, see Environ.
func (g *Globals) Flags() []string {
	var result []string
	if g.Debug {
		result = append(result, "--debug")
	}
	if g.ConfigFile != "" {
		result = append(result, "--config="+g.ConfigFile)
	}
	for _, path := range g.EnvFile {
		result = append(result, "--env-file="+path)
	}
	for _, flag := range [][2]string{
		{"endpoint", g.Endpoint},
		{"units", g.Units},
		{"lang", g.Lang},
	} {
		if flag[1] != "" {
			result = append(result, "--"+flag[0]+"="+flag[1])
		}
	}
	if g.Timeout != 0 {
		result = append(result, "--timeout="+g.Timeout.String())
	}
	return result
}

// Environ returns the environment for a subprocess, with the API key flag
// passed as OPENWEATHER_API_KEY so it does not appear on a command line
func (g *Globals) Environ() []string {
	env := os.Environ()
	if g.APIKey != "" {
		env = append(env, config.EnvAPIKey+"="+g.APIKey)
	}
	return env
}

////////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func execName() string {
	// The name of the executable
	name, err := os.Executable()
	if err != nil {
		panic(err)
	} else {
		return filepath.Base(name)
	}
}

// newLogger returns a development logger for debugging, and a production
// logger otherwise. Both write to stderr.
func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		config := zap.NewDevelopmentConfig()
		config.OutputPaths = []string{"stderr"}
		return config.Build()
	}
	config := zap.NewProductionConfig()
	config.OutputPaths = []string{"stderr"}
	config.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return config.Build()
}
