package main

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v2"

	risc0verifier "github.com/zkVerify/risc0-verifier/pkg/risc0-verifier"
)

func batchCommand() *cli.Command {
	return &cli.Command{
		Name:      "batch",
		Usage:     "Verifies many statements concurrently",
		ArgsUsage: "STATEMENT...",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Concurrent verifications (default: config, one per CPU)",
			},
			&cli.BoolFlag{
				Name:  "no-progress",
				Usage: "Do not draw a progress bar",
			},
		},
		Action: func(c *cli.Context) error {
			e, err := setup(c, "batch")
			if err != nil {
				return err
			}
			if c.IsSet("workers") {
				e.cfg.WithWorkers(c.Int("workers"))
				if err := e.cfg.Validate(); err != nil {
					return err
				}
			}
			paths := c.Args().Slice()
			if len(paths) == 0 {
				return cli.Exit("no statements given", 2)
			}

			failed, err := runBatch(c.Context, e, paths, c.App.Reader, !c.Bool("no-progress"))
			if err != nil {
				return err
			}
			fmt.Fprintf(e.out, "%d/%d statements verified\n", len(paths)-failed, len(paths))
			if failed > 0 {
				return cli.Exit(fmt.Sprintf("%d statements failed", failed), 1)
			}
			return nil
		},
	}
}

// runBatch verifies the statements at paths, grouped by protocol version,
// and returns how many failed
func runBatch(ctx context.Context, e *env, paths []string, stdin io.Reader, progress bool) (int, error) {
	groups := make(map[risc0verifier.ProtocolVersion][]int)
	statements := make([]*risc0verifier.Statement, len(paths))
	for i, path := range paths {
		s, err := readStatement(path, stdin)
		if err != nil {
			return 0, err
		}
		statements[i] = s
		groups[s.Version] = append(groups[s.Version], i)
	}

	order := make([]risc0verifier.ProtocolVersion, 0, len(groups))
	for v := range groups {
		order = append(order, v)
	}
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	var bar *progressbar.ProgressBar
	if progress {
		bar = progressbar.Default(int64(len(paths)), "verifying")
	}

	failed := 0
	for _, version := range order {
		v, err := risc0verifier.NewVerifier(version)
		if err != nil {
			return 0, err
		}
		idx := groups[version]
		jobs := make([]risc0verifier.Job, len(idx))
		for j, i := range idx {
			s := statements[i]
			jobs[j] = risc0verifier.Job{Vk: s.Vk, Proof: s.Proof, Journal: risc0verifier.Journal(s.Journal)}
		}

		log := e.log.With().Str("version", version.String()).Logger()
		log.Debug().Int("statements", len(jobs)).Int("workers", e.cfg.Workers).Msg("starting group")
		results, err := risc0verifier.VerifyBatch(ctx, v, jobs, risc0verifier.BatchOptions{
			Workers: e.cfg.Workers,
			OnDone: func(int, error) {
				if bar != nil {
					_ = bar.Add(1)
				}
			},
		})
		if err != nil {
			return 0, err
		}
		for j, res := range results {
			if res != nil {
				failed++
				log.Error().Err(res).Str("statement", paths[idx[j]]).Msg("verification failed")
			}
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}
	return failed, nil
}
