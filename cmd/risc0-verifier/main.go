package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/utils"
	risc0verifier "github.com/zkVerify/risc0-verifier/pkg/risc0-verifier"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "risc0-verifier",
		Usage: "Verifies RISC Zero receipts of every protocol version",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "Optional path to a YAML config file",
			},
			&cli.StringFlag{
				Name:    "protocol",
				Aliases: []string{"p"},
				Usage:   "Protocol version receipts are checked against (default: latest)",
			},
			&cli.UintFlag{
				Name:  "max-po2",
				Usage: "Largest segment po2 to accept (default: release bound)",
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "Receipt encoding: auto, json or cbor",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "trace, debug, info, warn, error or disabled",
			},
		},
		Commands: []*cli.Command{
			verifyCommand(),
			batchCommand(),
			generateCommand(),
			extractPo2Command(),
			paramsCommand(),
			serveCommand(),
		},
	}
}

// env is what every command needs: the effective config and a logger
type env struct {
	cfg *utils.Config
	log zerolog.Logger
	out io.Writer
}

// setup loads the config file, applies flag overrides and builds the logger
func setup(c *cli.Context, cmd string) (*env, error) {
	cfg := utils.DefaultConfig()
	if path := c.String("config"); path != "" {
		loaded, err := utils.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if v := c.String("protocol"); v != "" {
		cfg.WithProtocolVersion(v)
	}
	if po2 := c.Uint("max-po2"); po2 != 0 {
		cfg.WithMaxPo2(uint32(po2))
	}
	if f := c.String("format"); f != "" {
		cfg.WithFormat(f)
	}
	if l := c.String("log-level"); l != "" {
		cfg.WithLogLevel(l)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := newLogger(cfg.LogLevel, c.App.ErrWriter)
	if err != nil {
		return nil, err
	}
	return &env{
		cfg: cfg,
		log: logger.With().Str("cmd", cmd).Logger(),
		out: c.App.Writer,
	}, nil
}

// verifier builds the verifier selected by the configuration
func (e *env) verifier() (risc0verifier.Verifier, error) {
	v, err := risc0verifier.NewVerifierFromConfig(e.cfg)
	if err != nil {
		return nil, err
	}
	e.log.Debug().Str("version", v.Version().String()).Msg("verifier ready")
	return v, nil
}
