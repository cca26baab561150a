package main

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"

	"github.com/sheikhrachel/faction-gol/model"
	"github.com/sheikhrachel/faction-gol/session"
	"github.com/sheikhrachel/faction-gol/utils"
)

func main() {
	var (
		configPath  = flag.String("config", "config.json", "path to the JSON config")
		factionName = flag.String("faction", "red", "faction to play: red or blue")
		patternName = flag.String("pattern", "glider", "pattern to place")
		placements  = flag.String("place", "", `origins to place at, e.g. "10,10;40,12" (x,y[,z])`)
	)
	flag.Parse()

	// Load configuration - fallback to defaults if file doesn't exist
	config, err := utils.LoadConfig(*configPath)
	if errors.Is(err, fs.ErrNotExist) {
		fmt.Printf("Using default configuration (%s not found)\n", *configPath)
		config = utils.DefaultConfig()
	} else if err != nil {
		log.Fatal(err)
	}

	sess, err := session.New(config)
	if err != nil {
		log.Fatal(err)
	}

	faction, err := model.ParseFaction(*factionName)
	if err != nil {
		log.Fatal(err)
	}
	if err = sess.ChooseFaction(faction); err != nil {
		log.Fatal(err)
	}
	if err = sess.SelectPattern(*patternName); err != nil {
		log.Fatal(err)
	}
	origins, err := parseOrigins(*placements, config.Dimensions)
	if err != nil {
		log.Fatal(err)
	}

	displayGameInfo(config, sess)

	// Handle Ctrl+C gracefully
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go schedulePlacements(ctx, sess, origins)

	err = sess.Run(ctx, displayGameStatus(sess.Grid().Len()))
	switch {
	case errors.Is(err, context.Canceled):
		fmt.Println("\n🛑 Shutting down gracefully...")
	case err != nil:
		log.Fatal(err)
	default:
		fmt.Printf("\n🏁 Reached maximum generations limit (%d)\n", config.MaxGenerations)
	}

	displayFinalStats(sess.Stats())
}
