package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	risc0verifier "github.com/zkVerify/risc0-verifier/pkg/risc0-verifier"
)

func verifyCommand() *cli.Command {
	return &cli.Command{
		Name:  "verify",
		Usage: "Verifies one receipt against an image id and a journal",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "vk",
				Usage: "Image id as 32 byte hex",
			},
			&cli.StringFlag{
				Name:  "journal",
				Usage: "Journal as 0x prefixed hex",
			},
			&cli.StringFlag{
				Name:  "proof",
				Usage: "Path to the receipt, - for standard input",
			},
			&cli.StringFlag{
				Name:  "statement",
				Usage: "Path to a statement written by generate; replaces the other flags",
			},
		},
		Action: func(c *cli.Context) error {
			e, err := setup(c, "verify")
			if err != nil {
				return err
			}

			if path := c.String("statement"); path != "" {
				s, err := readStatement(path, c.App.Reader)
				if err != nil {
					return err
				}
				e.log.Info().Str("version", s.Version.String()).Str("vk", s.Vk.String()).Msg("verifying statement")
				if err := risc0verifier.VerifyStatement(s); err != nil {
					return verificationFailed(e, err)
				}
				fmt.Fprintln(e.out, "Verification successful")
				return nil
			}

			if !c.IsSet("vk") || !c.IsSet("proof") {
				return cli.Exit("--vk and --proof are required without --statement", 2)
			}
			vk, err := risc0verifier.ParseVk(c.String("vk"))
			if err != nil {
				return err
			}
			journal, err := parseJournal(c.String("journal"))
			if err != nil {
				return err
			}
			data, err := readInput(c.String("proof"), c.App.Reader)
			if err != nil {
				return err
			}
			proof, err := risc0verifier.DecodeProof(data, e.cfg.Format)
			if err != nil {
				return verificationFailed(e, err)
			}

			v, err := e.verifier()
			if err != nil {
				return err
			}
			e.log.Info().Str("version", v.Version().String()).Str("vk", vk.String()).Int("journal_len", len(journal)).Msg("verifying")
			if err := v.Verify(vk, proof, journal); err != nil {
				return verificationFailed(e, err)
			}
			fmt.Fprintln(e.out, "Verification successful")
			return nil
		},
	}
}

// verificationFailed logs a rejected receipt and exits with status 1
func verificationFailed(e *env, err error) error {
	e.log.Error().Err(err).Str("code", risc0verifier.CodeOf(err).String()).Msg("verification failed")
	return cli.Exit(fmt.Sprintf("Verification failed: %v", err), 1)
}
