package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	risc0verifier "github.com/zkVerify/risc0-verifier/pkg/risc0-verifier"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Runs the HTTP verification service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "listen",
				Usage: "Listen address (default: config, :3000)",
			},
		},
		Action: func(c *cli.Context) error {
			e, err := setup(c, "serve")
			if err != nil {
				return err
			}
			if c.IsSet("listen") {
				e.cfg.WithListenAddr(c.String("listen"))
			}
			app := newServer(e)
			e.log.Info().Str("addr", e.cfg.ListenAddr).Msg("listening")
			return app.Listen(e.cfg.ListenAddr)
		},
	}
}

// verifyResponse is the body of every verification answer
type verifyResponse struct {
	Valid   bool   `json:"valid"`
	Version string `json:"version,omitempty"`
	Code    string `json:"code,omitempty"`
	Error   string `json:"error,omitempty"`
}

type server struct {
	log zerolog.Logger
	// maxPo2 bounds segments when the configuration narrows the release bound
	maxPo2 uint32
}

func newServer(e *env) *fiber.App {
	fiberConfig := fiber.Config{
		WriteTimeout: 60 * time.Second,
		BodyLimit:    e.cfg.BodyLimit,
		ServerHeader: "Fiber",
		AppName:      "RISC Zero Verifier Server",
	}

	app := fiber.New(fiberConfig)

	corsConfig := cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Content-Length",
		AllowMethods: "GET, POST",
		MaxAge:       12 * 3600,
	}
	app.Use(cors.New(corsConfig))

	s := &server{log: e.log, maxPo2: e.cfg.MaxPo2}

	api := app.Group("/api")
	v1 := api.Group("/v1")

	v1.Get("/ping", ping)
	v1.Get("/params", s.params)
	v1.Post("/verify", s.verifyStatement)
	v1.Post("/verify/upload", s.verifyUpload)

	return app
}

func ping(c *fiber.Ctx) error {
	return c.SendString("pong")
}

func (s *server) params(c *fiber.Ctx) error {
	return c.JSON(allParameters())
}

func (s *server) verifier(version risc0verifier.ProtocolVersion) (risc0verifier.Verifier, error) {
	cfg := risc0verifier.DefaultConfig().WithProtocolVersion(version.String()).WithMaxPo2(s.maxPo2)
	return risc0verifier.NewVerifierFromConfig(cfg)
}

// verifyStatement checks a JSON statement as written by the generate command
func (s *server) verifyStatement(c *fiber.Ctx) error {
	var st risc0verifier.Statement
	if err := json.Unmarshal(c.Body(), &st); err != nil {
		return s.reject(c, fiber.StatusBadRequest, "", fmt.Errorf("invalid statement: %w", err))
	}
	if st.Proof == nil {
		return s.reject(c, fiber.StatusBadRequest, "", errors.New("statement has no proof"))
	}
	v, err := s.verifier(st.Version)
	if err != nil {
		return s.reject(c, fiber.StatusBadRequest, "", err)
	}
	return s.answer(c, v, st.Vk, st.Proof, risc0verifier.Journal(st.Journal))
}

// verifyUpload checks a receipt file sent as multipart form data with the
// version, vk and journal as form values
func (s *server) verifyUpload(c *fiber.Ctx) error {
	version := risc0verifier.DefaultVersion
	if name := c.FormValue("version"); name != "" {
		parsed, err := risc0verifier.ParseVersion(name)
		if err != nil {
			return s.reject(c, fiber.StatusBadRequest, "", err)
		}
		version = parsed
	}
	vk, err := risc0verifier.ParseVk(c.FormValue("vk"))
	if err != nil {
		return s.reject(c, fiber.StatusBadRequest, version.String(), err)
	}
	journal, err := parseJournal(c.FormValue("journal"))
	if err != nil {
		return s.reject(c, fiber.StatusBadRequest, version.String(), err)
	}
	data, err := getFile(c, "proof")
	if err != nil {
		return s.reject(c, fiber.StatusBadRequest, version.String(), err)
	}
	proof, err := risc0verifier.DecodeProof(data, c.FormValue("format", "auto"))
	if err != nil {
		return s.reject(c, fiber.StatusUnprocessableEntity, version.String(), err)
	}
	v, err := s.verifier(version)
	if err != nil {
		return s.reject(c, fiber.StatusBadRequest, version.String(), err)
	}
	return s.answer(c, v, vk, proof, journal)
}

func (s *server) answer(c *fiber.Ctx, v risc0verifier.Verifier, vk risc0verifier.Vk, proof *risc0verifier.Proof, journal risc0verifier.Journal) error {
	start := time.Now()
	err := v.Verify(vk, proof, journal)
	log := s.log.With().Str("version", v.Version().String()).Str("vk", vk.String()).Dur("took", time.Since(start)).Logger()
	if err != nil {
		log.Info().Err(err).Msg("rejected")
		return s.reject(c, fiber.StatusUnprocessableEntity, v.Version().String(), err)
	}
	log.Info().Msg("verified")
	return c.JSON(verifyResponse{Valid: true, Version: v.Version().String()})
}

func (s *server) reject(c *fiber.Ctx, status int, version string, err error) error {
	s.log.Debug().Err(err).Int("status", status).Msg("request failed")
	return c.Status(status).JSON(verifyResponse{
		Valid:   false,
		Version: version,
		Code:    risc0verifier.CodeOf(err).String(),
		Error:   err.Error(),
	})
}

func getFile(c *fiber.Ctx, name string) ([]byte, error) {
	fileHeader, err := c.FormFile(name)
	if err != nil {
		return nil, fmt.Errorf("no %s file provided: %w", name, err)
	}

	f, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s file: %w", name, err)
	}
	defer f.Close()

	file, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s file: %w", name, err)
	}
	return file, nil
}
