package main

import (
	"os"

	"github.com/urfave/cli/v2"

	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/fixture"
	"github.com/zkVerify/risc0-verifier/internal/risc0-verifier/utils"
	risc0verifier "github.com/zkVerify/risc0-verifier/pkg/risc0-verifier"
)

func generateCommand() *cli.Command {
	return &cli.Command{
		Name:  "generate",
		Usage: "Writes a deterministic statement that verifies under the selected protocol version",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "label",
				Usage: "Seed of the program image",
				Value: "example",
			},
			&cli.StringFlag{
				Name:  "journal",
				Usage: "Journal as 0x prefixed hex",
			},
			&cli.StringFlag{
				Name:  "shape",
				Usage: "segment, composite or succinct",
				Value: fixture.ShapeSuccinct,
			},
			&cli.IntFlag{
				Name:  "segments",
				Usage: "Number of segments",
				Value: 1,
			},
			&cli.StringFlag{
				Name:  "hash",
				Usage: "Segment hash function (default: poseidon2)",
			},
			&cli.UintFlag{
				Name:  "po2",
				Usage: "Segment po2 (default: smallest)",
			},
			&cli.StringFlag{
				Name:  "out",
				Usage: "Statement output path, - for standard output",
				Value: "-",
			},
			&cli.StringFlag{
				Name:  "proof-out",
				Usage: "Optional path to also write the bare proof in --format",
			},
		},
		Action: func(c *cli.Context) error {
			e, err := setup(c, "generate")
			if err != nil {
				return err
			}
			version := risc0verifier.DefaultVersion
			if e.cfg.ProtocolVersion != "" {
				if version, err = risc0verifier.ParseVersion(e.cfg.ProtocolVersion); err != nil {
					return err
				}
			}
			journal, err := parseJournal(c.String("journal"))
			if err != nil {
				return err
			}

			cs, err := fixture.Generate(version, fixture.CaseOptions{
				Label:    c.String("label"),
				Journal:  journal,
				Shape:    c.String("shape"),
				Segments: c.Int("segments"),
				Hash:     c.String("hash"),
				Po2:      uint32(c.Uint("po2")),
			})
			if err != nil {
				return err
			}
			e.log.Info().Str("version", version.String()).Str("shape", c.String("shape")).Str("vk", cs.Vk.String()).Msg("generated")

			if path := c.String("proof-out"); path != "" {
				format := e.cfg.Format
				if format == utils.FormatAuto {
					format = utils.FormatJSON
				}
				data, err := risc0verifier.EncodeProof(cs.Proof, format)
				if err != nil {
					return err
				}
				if err := os.WriteFile(path, data, 0o644); err != nil {
					return err
				}
			}

			if path := c.String("out"); path != "-" {
				f, err := os.Create(path)
				if err != nil {
					return err
				}
				defer f.Close()
				return writeJSON(f, cs)
			}
			return writeJSON(e.out, cs)
		},
	}
}
