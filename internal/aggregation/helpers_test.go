package aggregation

import (
	"testing"

	"github.com/stretchr/testify/require"

	"agrocaged/internal/classification"
	"agrocaged/internal/dataprocessing"
	"agrocaged/internal/shared/testutil"
	"agrocaged/pkg/contracts/domain"
)

func testAssets(t *testing.T) *classification.Assets {
	t.Helper()
	assets, err := classification.Default()
	require.NoError(t, err)
	return assets
}

func newTestBattery(t *testing.T, opts Options) *Battery {
	t.Helper()
	return NewBattery(testAssets(t), opts)
}

func enrich(t *testing.T, raw ...domain.RawMovement) []domain.EnrichedMovement {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	e := dataprocessing.NewEnricher(testAssets(t), 1, logger)

	out := make([]domain.EnrichedMovement, len(raw))
	for i, r := range raw {
		out[i] = e.EnrichOne(r)
	}
	return out
}

// sampleDataset spans two municipalities, three periods and three chains
func sampleDataset(t *testing.T) []domain.EnrichedMovement {
	t.Helper()
	mov := testutil.Movement
	curitiba := testutil.WithMunicipality("410690")
	londrina := testutil.WithMunicipality("411370")

	return enrich(t,
		mov("0151201", curitiba, testutil.WithPeriod(2023, 12), testutil.WithSalary("2000,00")),
		mov("0151201", curitiba, testutil.WithPeriod(2024, 1), testutil.WithSalary("1800,00")),
		mov("0151201", curitiba, testutil.WithPeriod(2024, 1), testutil.Termination, testutil.WithSalary("1700,00")),
		mov("0115600", curitiba, testutil.WithPeriod(2024, 1), testutil.WithSex("3"), testutil.WithAge("22")),
		mov("0115600", londrina, testutil.WithPeriod(2024, 2), testutil.WithSalary("2500,00"), testutil.WithAge("70")),
		mov("0115600", londrina, testutil.WithPeriod(2024, 2), testutil.Termination, testutil.WithSalary(""), testutil.WithAge("x")),
		mov("0210103", londrina, testutil.WithPeriod(2024, 2), testutil.WithSex("3"), testutil.WithSalary("3000,00")),
		mov("0500301", londrina, testutil.WithPeriod(2024, 2), testutil.Termination),
	)
}
