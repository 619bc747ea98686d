package main

import (
	"flag"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/skyvolt/fleetmon/api"
	"github.com/skyvolt/fleetmon/infra"
	"github.com/skyvolt/fleetmon/pkg/logger"
	"github.com/skyvolt/fleetmon/pkg/util"
	"github.com/skyvolt/fleetmon/repo"

	_ "github.com/skyvolt/fleetmon/api/deye"
	_ "github.com/skyvolt/fleetmon/api/growatt"
)

// troubleshoot exercises one credential against the live vendor API and
// dumps what comes back, without touching the fleet tables.
func main() {
	logger.Init("troubleshoot.log")

	credentialID := flag.Int64("credential", 0, "credential id to probe")
	inverterID := flag.String("inverter", "", "inverter external id for realtime and history")
	historyHours := flag.Int("history", 0, "also fetch this many hours of history")
	flag.Parse()

	if *credentialID == 0 {
		log.Fatal().Msg("-credential is required")
	}

	db, err := infra.NewGormDB()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}

	credential, err := repo.NewCredentialRepo(db).FindOne(*credentialID)
	if err != nil {
		log.Fatal().Err(err).Int64("credential_id", *credentialID).Msg("credential not found")
	}

	adapter, err := api.NewAdapter(credential)
	if err != nil {
		log.Fatal().Err(err).Msg("no adapter for brand")
	}

	token, err := adapter.Authenticate()
	if err != nil {
		log.Fatal().Err(err).Msg("authentication failed")
	}
	log.Info().Dur("expires_in", token.ExpiresIn).Msg("authenticated")

	if *inverterID != "" {
		reading, err := adapter.GetRealtime(*inverterID)
		if err != nil {
			log.Fatal().Err(err).Msg("realtime fetch failed")
		}
		if reading == nil {
			log.Warn().Str("inverter", *inverterID).Msg("vendor returned no realtime data")
		} else {
			util.PrintJSON(reading)
		}

		if *historyHours > 0 {
			end := time.Now()
			points, err := adapter.GetHistory(*inverterID, end.Add(-time.Duration(*historyHours)*time.Hour), end)
			if err != nil {
				log.Fatal().Err(err).Msg("history fetch failed")
			}
			util.PrintJSON(points)
		}
		return
	}

	stations, err := adapter.ListStations()
	if err != nil {
		log.Fatal().Err(err).Msg("station list failed")
	}
	util.PrintJSON(stations)

	for _, station := range stations {
		inverters, err := adapter.ListInverters(station.ExternalID)
		if err != nil {
			log.Error().Err(err).Str("station", station.ExternalID).Msg("inverter list failed")
			continue
		}
		util.PrintJSON(inverters)
	}
}
