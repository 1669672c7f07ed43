package main

import (
	"database/sql"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-importa/internal/obs"
)

type seedProduct struct {
	Name        string
	Brand       string
	Category    string
	ForeignCost string
	Stock       int
}

type seedCustomer struct {
	FullName string
	Phone    string
	Address  string
}

var categories = []string{"Perfumes", "Electronics", "Cosmetics", "Supplements", "Apparel"}

var products = []seedProduct{
	{"Sauvage EDT 100ml", "Dior", "Perfumes", "89.00", 6},
	{"Bleu de Chanel 100ml", "Chanel", "Perfumes", "135.00", 4},
	{"Good Girl 80ml", "Carolina Herrera", "Perfumes", "118.00", 3},
	{"AirPods Pro 2", "Apple", "Electronics", "189.99", 5},
	{"Kindle Paperwhite", "Amazon", "Electronics", "139.99", 8},
	{"Fit Me Foundation", "Maybelline", "Cosmetics", "7.98", 20},
	{"Lash Sensational Mascara", "Maybelline", "Cosmetics", "9.49", 15},
	{"Creatine Monohydrate 500g", "Optimum Nutrition", "Supplements", "29.99", 10},
	{"Gold Standard Whey 2lb", "Optimum Nutrition", "Supplements", "39.99", 6},
	{"501 Original Jeans", "Levi's", "Apparel", "59.50", 7},
}

var customers = []seedCustomer{
	{"Ana Souza", "+55 11 91234-0001", "Rua das Flores, 120, São Paulo"},
	{"Bruno Lima", "+55 21 99876-0002", "Av. Atlântica, 455, Rio de Janeiro"},
	{"Carla Mendes", "+55 31 98765-0003", "Rua da Bahia, 88, Belo Horizonte"},
	{"Diego Rocha", "+55 41 97654-0004", "Rua XV de Novembro, 900, Curitiba"},
}

func main() {
	_ = godotenv.Load()
	logger := obs.NewLogger(os.Getenv("OBS_LOG_FORMAT"), os.Getenv("OBS_LOG_LEVEL")).With().Str("component", "seeder").Logger()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		logger.Fatal().Msg("DATABASE_URL is not set")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("open database")
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatal().Err(err).Msg("ping database")
	}

	catIDs := seedCategories(db, logger)
	seedProducts(db, catIDs, logger)
	seedCustomers(db, logger)

	logger.Info().Msg("seeding completed")
}

func seedCategories(db *sql.DB, logger zerolog.Logger) map[string]string {
	ids := make(map[string]string, len(categories))
	for _, name := range categories {
		var id string
		err := db.QueryRow(`
			INSERT INTO categories (name) VALUES ($1)
			ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
			RETURNING id;
		`, name).Scan(&id)
		if err != nil {
			logger.Error().Err(err).Str("category", name).Msg("seed category")
			continue
		}
		ids[name] = id
	}
	logger.Info().Int("count", len(ids)).Msg("categories seeded")
	return ids
}

// Products have no natural key, so re-running the seeder only inserts the
// ones whose name and brand are not present yet.
func seedProducts(db *sql.DB, catIDs map[string]string, logger zerolog.Logger) {
	inserted := 0
	for _, p := range products {
		catID, ok := catIDs[p.Category]
		if !ok {
			logger.Warn().Str("category", p.Category).Str("product", p.Name).Msg("missing category")
			continue
		}
		res, err := db.Exec(`
			INSERT INTO products (name, brand, category_id, foreign_cost, stock)
			SELECT $1::text, $2::text, $3::uuid, $4::numeric, $5::int
			WHERE NOT EXISTS (SELECT 1 FROM products WHERE name = $1 AND brand = $2);
		`, p.Name, p.Brand, catID, p.ForeignCost, p.Stock)
		if err != nil {
			logger.Error().Err(err).Str("product", p.Name).Msg("seed product")
			continue
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}
	logger.Info().Int("inserted", inserted).Msg("products seeded")
}

func seedCustomers(db *sql.DB, logger zerolog.Logger) {
	inserted := 0
	for _, c := range customers {
		res, err := db.Exec(`
			INSERT INTO customers (full_name, phone, address)
			SELECT $1::text, $2::text, $3::text
			WHERE NOT EXISTS (SELECT 1 FROM customers WHERE full_name = $1 AND phone = $2);
		`, c.FullName, c.Phone, c.Address)
		if err != nil {
			logger.Error().Err(err).Str("customer", c.FullName).Msg("seed customer")
			continue
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}
	logger.Info().Int("inserted", inserted).Msg("customers seeded")
}
