package ingest

import (
	"fmt"
	"math/rand"
	"time"

	"sig-dashboard/internal/models"
)

// Sample dataset knobs. The generator is seeded, so the same (records,
// seed) pair always produces the same table.
const (
	DefaultSampleRecords = 1000
	DefaultSampleSeed    = 42

	sampleCustomerPool = 2000
)

type priceRange struct {
	min, max float64
}

var (
	sampleCategories = []string{"Eletrônicos", "Moda", "Casa e Decoração", "Livros", "Esportes", "Beleza"}

	samplePriceRanges = map[string]priceRange{
		"Eletrônicos":      {200, 3500},
		"Moda":             {30, 700},
		"Casa e Decoração": {60, 1500},
		"Livros":           {15, 120},
		"Esportes":         {40, 900},
		"Beleza":           {20, 400},
	}

	sampleStates       = []string{"SP", "RJ", "MG", "RS", "PR", "SC", "BA", "PE"}
	sampleStateWeights = []float64{0.35, 0.20, 0.12, 0.08, 0.06, 0.05, 0.08, 0.06}

	sampleCities = map[string][]string{
		"SP": {"São Paulo", "Campinas", "Santos", "Ribeirão Preto"},
		"RJ": {"Rio de Janeiro", "Niterói"},
		"MG": {"Belo Horizonte", "Uberlândia"},
		"RS": {"Porto Alegre", "Caxias do Sul"},
		"PR": {"Curitiba", "Londrina"},
		"SC": {"Florianópolis", "Joinville"},
		"BA": {"Salvador", "Feira de Santana"},
		"PE": {"Recife", "Olinda"},
	}

	samplePayments       = []string{"Cartão de Crédito", "PIX", "Boleto", "Cartão de Débito"}
	samplePaymentWeights = []float64{0.45, 0.30, 0.15, 0.10}
)

// SampleTable generates a demonstration dataset spanning January through
// October 2024 with skewed state and payment distributions, shaped exactly
// like an uploaded CSV so it flows through the same normalization path.
func SampleTable(records int, seed int64) *Table {
	if records <= 0 {
		records = DefaultSampleRecords
	}
	rng := rand.New(rand.NewSource(seed))

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 10, 31, 0, 0, 0, 0, time.UTC)
	days := int(end.Sub(start).Hours()/24) + 1

	rows := make([][]string, 0, records)
	for i := 0; i < records; i++ {
		state := weightedPick(rng, sampleStates, sampleStateWeights)
		cities := sampleCities[state]
		city := cities[rng.Intn(len(cities))]
		category := sampleCategories[rng.Intn(len(sampleCategories))]

		pr := samplePriceRanges[category]
		price := roundCents(pr.min + rng.Float64()*(pr.max-pr.min))
		quantity := 1 + rng.Intn(4)
		total := roundCents(price * float64(quantity))
		date := start.AddDate(0, 0, rng.Intn(days))

		rows = append(rows, []string{
			fmt.Sprintf("ORD_%06d", i+1),
			fmt.Sprintf("CUST_%06d", 1+rng.Intn(sampleCustomerPool-1)),
			date.Format("2006-01-02"),
			category,
			fmt.Sprintf("%.2f", price),
			fmt.Sprintf("%d", quantity),
			fmt.Sprintf("%.2f", total),
			state,
			city,
			weightedPick(rng, samplePayments, samplePaymentWeights),
		})
	}

	headers := make([]string, len(models.RequiredColumns))
	copy(headers, models.RequiredColumns)
	return &Table{Headers: headers, Rows: rows}
}

func weightedPick(rng *rand.Rand, items []string, weights []float64) string {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	v := rng.Float64() * total
	for i, w := range weights {
		v -= w
		if v <= 0 {
			return items[i]
		}
	}
	return items[len(items)-1]
}

func roundCents(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
