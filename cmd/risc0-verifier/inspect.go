package main

import (
	"github.com/urfave/cli/v2"

	risc0verifier "github.com/zkVerify/risc0-verifier/pkg/risc0-verifier"
)

func extractPo2Command() *cli.Command {
	return &cli.Command{
		Name:  "extract-po2",
		Usage: "Prints the hash function and po2 of every segment of a receipt",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "proof",
				Usage:    "Path to the receipt, - for standard input",
				Required: true,
			},
		},
		Action: func(c *cli.Context) error {
			e, err := setup(c, "extract-po2")
			if err != nil {
				return err
			}
			data, err := readInput(c.String("proof"), c.App.Reader)
			if err != nil {
				return err
			}
			proof, err := risc0verifier.DecodeProof(data, e.cfg.Format)
			if err != nil {
				return err
			}
			v, err := e.verifier()
			if err != nil {
				return err
			}
			infos, err := v.SegmentsInfo(proof)
			if err != nil {
				return err
			}
			return writeJSON(e.out, infos)
		},
	}
}

func paramsCommand() *cli.Command {
	return &cli.Command{
		Name:  "params",
		Usage: "Prints the verifier parameters of every protocol version, or of --protocol",
		Action: func(c *cli.Context) error {
			e, err := setup(c, "params")
			if err != nil {
				return err
			}
			if e.cfg.ProtocolVersion != "" || e.cfg.MaxPo2 != 0 {
				v, err := e.verifier()
				if err != nil {
					return err
				}
				return writeJSON(e.out, v.Parameters())
			}
			return writeJSON(e.out, allParameters())
		},
	}
}

func allParameters() []risc0verifier.Parameters {
	vs := risc0verifier.Versions()
	params := make([]risc0verifier.Parameters, len(vs))
	for i, v := range vs {
		ver, err := risc0verifier.NewVerifier(v)
		if err != nil {
			// every listed version has a verifier
			panic(err)
		}
		params[i] = ver.Parameters()
	}
	return params
}
