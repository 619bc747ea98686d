package main

import (
	"flag"
	"os"

	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog/log"
	"github.com/skyvolt/fleetmon/api"
	"github.com/skyvolt/fleetmon/infra"
	"github.com/skyvolt/fleetmon/model"
	"github.com/skyvolt/fleetmon/pkg/logger"
	"github.com/skyvolt/fleetmon/repo"

	_ "github.com/skyvolt/fleetmon/api/deye"
	_ "github.com/skyvolt/fleetmon/api/growatt"
)

const DefaultFileName = "credentials.csv"

type CredentialRow struct {
	BrandCode string `csv:"brand_code"`
	AccountID string `csv:"account_id"`
	APIKey    string `csv:"api_key"`
	APISecret string `csv:"api_secret"`
	Owner     string `csv:"owner"`
}

func main() {
	logger.Init("import_credential.log")

	filename := flag.String("f", DefaultFileName, "csv file to import")
	flag.Parse()

	file, err := os.Open(*filename)
	if err != nil {
		log.Fatal().Err(err).Str("file", *filename).Msg("failed to open file")
	}
	defer file.Close()

	var rows []CredentialRow
	if err := gocsv.UnmarshalFile(file, &rows); err != nil {
		log.Fatal().Err(err).Msg("failed to decode csv")
	}

	db, err := infra.NewGormDB()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	credRepo := repo.NewCredentialRepo(db)

	var imported int
	for _, row := range rows {
		credential := &model.Credential{
			BrandCode: row.BrandCode,
			AccountID: row.AccountID,
			APIKey:    row.APIKey,
			APISecret: row.APISecret,
			Owner:     row.Owner,
			Active:    true,
		}

		if _, err := api.NewAdapter(credential); err != nil {
			log.Warn().Err(err).Str("account", row.AccountID).Msg("skipping row with unknown brand")
			continue
		}

		if err := credRepo.Create(credential); err != nil {
			log.Warn().Err(err).Str("account", row.AccountID).Msg("failed to create credential")
			continue
		}

		imported++
	}

	log.Info().Int("imported", imported).Int("total", len(rows)).Msg("credential import finished")
}
