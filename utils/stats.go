package utils

import (
	"time"

	"github.com/sheikhrachel/faction-gol/model"
)

// Stats for performance monitoring
type Stats struct {
	GenerationsPerSecond float64
	AveragePopulation    float64
	TotalGenerations     int
	StartTime            time.Time
	Scores               model.Scores
	PeakScores           model.Scores
	Placements           int
}

func NewStats() *Stats {
	return &Stats{StartTime: time.Now()}
}

func (s *Stats) Update(generation int, population int, scores model.Scores, duration time.Duration) {
	s.TotalGenerations = generation
	if duration > 0 {
		s.GenerationsPerSecond = 1.0 / duration.Seconds()
	}

	s.Scores = scores
	s.PeakScores.Red = max(s.PeakScores.Red, scores.Red)
	s.PeakScores.Blue = max(s.PeakScores.Blue, scores.Blue)

	// Simple moving average for population
	if s.AveragePopulation == 0 {
		s.AveragePopulation = float64(population)
	} else {
		s.AveragePopulation = (s.AveragePopulation * 0.9) + (float64(population) * 0.1)
	}
}
