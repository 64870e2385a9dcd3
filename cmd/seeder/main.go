package main

import (
	"database/sql"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/serveit-app/serveit/internal/database"
)

// Simplified config loading for the script
func loadConfig() map[string]string {
	err := godotenv.Load()
	if err != nil {
		log.Warn("No .env file found, reading from environment variables")
	}

	config := map[string]string{
		"DB_NAME":        "serveit.db",
		"MIGRATIONS_DIR": "./migrations",
	}
	for key := range config {
		if value, ok := os.LookupEnv(key); ok {
			config[key] = value
		}
	}
	return config
}

var firstNames = []string{"Rod", "Bjorn", "John", "Ivan", "Stefan", "Boris", "Pete", "Andre", "Roger", "Rafael", "Novak", "Andy"}
var lastNames = []string{"Laver", "Borg", "McEnroe", "Lendl", "Edberg", "Becker", "Sampras", "Agassi", "Federer", "Nadal", "Djokovic", "Murray"}
var surfaces = []string{"Hard", "Clay", "Grass", "Carpet"}
var countries = []string{"AUS", "SWE", "USA", "CZE", "GER", "SUI", "ESP", "SRB", "GBR"}
var oddsMakers = []string{"B365", "Pinnacle", "Unibet", "Betway"}

const (
	numPlayers        = 200
	numTourneys       = 40
	matchesPerTourney = 31
	batchSize         = 100
)

// quote is a market price held back until its match row has been flushed,
// so the odds insert never runs ahead of its foreign key.
type quote struct {
	tourneyID string
	matchNum  int
	playerID  int
	maker     string
	odds      float64
}

// seed populates the database with randomized players, tournaments, matches
// and market quotes. Matches go in as batched multi-row inserts inside one
// transaction; quotes are buffered and inserted after every match row is in.
func seed(db *sql.DB, rng *rand.Rand) (matches int, quotes int, err error) {
	names := make([]string, numPlayers+1)
	for i := 1; i <= numPlayers; i++ {
		name := firstNames[rng.Intn(len(firstNames))] + " " + lastNames[rng.Intn(len(lastNames))]
		names[i] = name
		dob := time.Date(1970+rng.Intn(35), time.Month(1+rng.Intn(12)), 1+rng.Intn(28), 0, 0, 0, 0, time.UTC)
		_, err := db.Exec(`INSERT OR IGNORE INTO players (player_id, name, hand, dob, ioc, height, is_atp)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			i, name, []string{"R", "L"}[rng.Intn(2)], dob.Format("2006-01-02"),
			countries[rng.Intn(len(countries))], 165+rng.Intn(40), rng.Intn(2))
		if err != nil {
			return 0, 0, fmt.Errorf("failed to insert player %d: %w", i, err)
		}
	}
	log.Info("Ensured dummy players exist.", "count", numPlayers)

	log.Info("Preparing to insert dummy matches...", "total", numTourneys*matchesPerTourney, "batch_size", batchSize)

	tx, err := db.Begin()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	valueStrings := make([]string, 0, batchSize)
	valueArgs := make([]interface{}, 0, batchSize*15)
	var pendingQuotes []quote
	inserted := 0

	flush := func() error {
		if len(valueStrings) == 0 {
			return nil
		}
		stmt := fmt.Sprintf(`
			INSERT INTO tourney_matches (tourney_id, match_num, tourney_date,
				winner_id, winner_name, winner_rank, winner_rank_points,
				loser_id, loser_name, loser_rank, loser_rank_points,
				score, minutes, w_ace, l_ace)
			VALUES %s;`, strings.Join(valueStrings, ","))
		if _, err := tx.Exec(stmt, valueArgs...); err != nil {
			return fmt.Errorf("failed to execute batch insert: %w", err)
		}
		valueStrings = valueStrings[:0]
		valueArgs = valueArgs[:0]
		log.Info("Inserted batch", "completed", inserted)
		return nil
	}

	for t := 0; t < numTourneys; t++ {
		year := 2015 + rng.Intn(10)
		tourneyID := fmt.Sprintf("%d-%03d", year, t+1)
		surface := surfaces[rng.Intn(len(surfaces))]
		_, err := tx.Exec(`INSERT OR IGNORE INTO tourneys (tourney_id, tourney_name, surface, num_match, tourney_level, best_of)
			VALUES (?, ?, ?, ?, ?, ?)`,
			tourneyID, fmt.Sprintf("Seeded Open %d", t+1), surface, matchesPerTourney,
			[]string{"G", "M", "A"}[rng.Intn(3)], []int{3, 5}[rng.Intn(2)])
		if err != nil {
			return 0, 0, fmt.Errorf("failed to insert tourney %s: %w", tourneyID, err)
		}

		date := time.Date(year, time.Month(1+rng.Intn(12)), 1+rng.Intn(28), 0, 0, 0, 0, time.UTC)
		for m := 1; m <= matchesPerTourney; m++ {
			winner := 1 + rng.Intn(numPlayers)
			loser := 1 + rng.Intn(numPlayers)
			if loser == winner {
				loser = winner%numPlayers + 1
			}

			valueStrings = append(valueStrings, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
			valueArgs = append(valueArgs,
				tourneyID,
				m,
				date.AddDate(0, 0, m/4).Format("2006-01-02"),
				winner,
				names[winner],
				1+rng.Intn(200),
				100+rng.Intn(9000),
				loser,
				names[loser],
				1+rng.Intn(200),
				100+rng.Intn(9000),
				"6-4 6-3",
				60+rng.Intn(180),
				rng.Intn(20),
				rng.Intn(20),
			)
			inserted++

			// Roughly half the matches get priced by a random book. The
			// quote is held back until the match rows are flushed.
			if rng.Intn(2) == 0 {
				quoted := []int{winner, loser}[rng.Intn(2)]
				pendingQuotes = append(pendingQuotes, quote{
					tourneyID: tourneyID,
					matchNum:  m,
					playerID:  quoted,
					maker:     oddsMakers[rng.Intn(len(oddsMakers))],
					odds:      1.1 + rng.Float64()*3.5,
				})
			}

			if len(valueStrings) >= batchSize {
				if err := flush(); err != nil {
					return 0, 0, err
				}
			}
		}
	}
	if err := flush(); err != nil {
		return 0, 0, err
	}

	log.Info("Inserting market quotes...", "count", len(pendingQuotes))
	for _, q := range pendingQuotes {
		_, err := tx.Exec(`INSERT OR IGNORE INTO odds (tourney_id, match_num, player_id, odds_maker, odds)
			VALUES (?, ?, ?, ?, ?)`,
			q.tourneyID, q.matchNum, q.playerID, q.maker, q.odds)
		if err != nil {
			return 0, 0, fmt.Errorf("failed to insert odds: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return inserted, len(pendingQuotes), nil
}

func main() {
	log.Info("Starting database seeder...")
	cfg := loadConfig()

	db, teardown, err := database.InitDB(cfg["DB_NAME"], "", "", cfg["MIGRATIONS_DIR"])
	if err != nil {
		log.Fatalf("Failed to open database: %s", err)
	}
	defer teardown()

	log.Info("Successfully connected to the database.", "db", cfg["DB_NAME"])

	startTime := time.Now()
	matches, quotes, err := seed(db, rand.New(rand.NewSource(time.Now().UnixNano())))
	if err != nil {
		log.Fatalf("Seeding failed: %s", err)
	}

	duration := time.Since(startTime)
	log.Info("Successfully inserted all dummy matches.", "matches", matches, "quotes", quotes, "duration", duration)
}
