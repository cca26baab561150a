package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/sheikhrachel/faction-gol/model"
	"github.com/sheikhrachel/faction-gol/session"
	"github.com/sheikhrachel/faction-gol/utils"
)

// displayGameInfo shows the initial game information
func displayGameInfo(config utils.Config, sess *session.Session) {
	scores := sess.Scores()
	fmt.Printf("Features: Parallel: %v, Bounded: %v | Rule: %s\n",
		config.UseParallel, config.UseBoundedGrid, sess.Engine().Rule())
	fmt.Printf("Grid: %d^%d | Red: %d | Blue: %d\n",
		config.Size, config.Dimensions, scores.Red, scores.Blue)
	fmt.Printf("Playing %s with %q | Patterns: %s\n",
		sess.Faction(), sess.Pattern(), strings.Join(sess.Placer().Table().Names(), ", "))
	fmt.Println("Press Ctrl+C to exit gracefully")
	fmt.Println()
}

// displayGameStatus returns an observer printing one status line per generation
func displayGameStatus(cells int) session.Observer {
	return func(report session.Report, snap *model.Grid) {
		density := float64(report.Population) / float64(cells) * 100

		status := "Active"
		if report.Stagnant {
			status = "Stagnant"
		}
		if report.Population == 0 {
			status = "Extinct"
		}

		fmt.Printf("Gen: %d | Red: %d | Blue: %d | Living: %d | Density: %.1f%% | Leader: %s | Cooldown: %d | %s | %.8s\n",
			report.Generation, report.Scores.Red, report.Scores.Blue, report.Population, density,
			report.Scores.Leader(), report.Cooldown, status, snap.Hash())
	}
}

// displayFinalStats prints the session summary
func displayFinalStats(stats *utils.Stats) {
	fmt.Printf("Final stats: %d generations in %.1f seconds, %d placements\n",
		stats.TotalGenerations, time.Since(stats.StartTime).Seconds(), stats.Placements)
	fmt.Printf("Final score: Red %d, Blue %d (peak Red %d, Blue %d) | Avg Pop: %.1f\n",
		stats.Scores.Red, stats.Scores.Blue, stats.PeakScores.Red, stats.PeakScores.Blue, stats.AveragePopulation)
}

// parseOrigins parses "x,y;x,y" (or x,y,z for 3D) into coordinates
func parseOrigins(s string, dims int) ([]model.Coord, error) {
	var origins []model.Coord
	for _, item := range strings.Split(s, ";") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		parts := strings.Split(item, ",")
		if len(parts) != dims {
			return nil, errors.Errorf("[parseOrigins] origin %q needs %d components", item, dims)
		}
		var c model.Coord
		for axis, part := range parts {
			v, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				return nil, errors.Wrapf(err, "[parseOrigins] origin %q", item)
			}
			c[axis] = v
		}
		origins = append(origins, c)
	}
	return origins, nil
}

// schedulePlacements submits each origin in turn, waiting out the cooldown
func schedulePlacements(ctx context.Context, sess *session.Session, origins []model.Coord) {
	wait := sess.Config().FrameRate
	for _, origin := range origins {
		for {
			res, err := sess.Submit(ctx, origin)
			if errors.Is(err, session.ErrCoolingDown) {
				select {
				case <-ctx.Done():
					return
				case <-time.After(wait):
				}
				continue
			}
			if err != nil {
				fmt.Printf("Placement at %v failed: %v\n", origin, err)
				if ctx.Err() != nil || errors.Is(err, session.ErrStopped) {
					return
				}
				break
			}
			fmt.Printf("✨ Placed %s for %s at %v: %d cells (%d clipped)\n",
				res.Pattern, res.Faction, res.Origin, res.Written, res.Clipped)
			break
		}
	}
}
