package aggregation

import (
	"sort"

	"agrocaged/pkg/contracts/domain"
)

// NotSpecified describes subclasses missing from the description asset
const NotSpecified = "Não especificado"

var monthNames = [...]string{"Jan", "Fev", "Mar", "Abr", "Mai", "Jun", "Jul", "Ago", "Set", "Out", "Nov", "Dez"}

// MonthName is the short Portuguese name of a month, empty when out of range
func MonthName(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return monthNames[month-1]
}

func byPeriod(r *domain.EnrichedMovement) string       { return r.Period }
func byChain(r *domain.EnrichedMovement) string        { return r.Chain }
func byMunicipality(r *domain.EnrichedMovement) string { return r.Municipality }
func bySubclass(r *domain.EnrichedMovement) string     { return r.Subclass }

// KPIs builds the headline block for the latest period and the whole range
func (b *Battery) KPIs(records []domain.EnrichedMovement) domain.KPIs {
	var kpis domain.KPIs
	var total, last bucket
	var ages []float64
	var male int

	for i := range records {
		if records[i].Period > kpis.ReferencePeriod {
			kpis.ReferencePeriod = records[i].Period
		}
	}
	for i := range records {
		r := &records[i]
		total.add(r, true)
		if r.Period == kpis.ReferencePeriod {
			last.add(r, false)
		}
		ages = append(ages, r.AgeValue)
		if r.SexName == b.maleLabel {
			male++
		}
	}

	stats := total.stats()
	kpis.LastPeriod = last.flow()
	kpis.Cumulative = total.flow()
	kpis.Salary = domain.SalaryCenter{Mean: round(stats.Mean, 2), Median: round(stats.Median, 2)}
	kpis.Profile = domain.WorkforceProfile{
		MalePercent: share(int64(male), int64(len(records))),
		MeanAge:     round(Mean(ages), 1),
	}
	return kpis
}

// Timeseries is the monthly series with the running balance
func (b *Battery) Timeseries(records []domain.EnrichedMovement) []domain.TimeseriesRow {
	g := groupBy(records, byPeriod, true)

	rows := make([]domain.TimeseriesRow, 0, len(g.keys))
	for _, period := range g.keys {
		bk := g.buckets[period]
		stats := bk.stats()
		rows = append(rows, domain.TimeseriesRow{
			Period:       period,
			Flow:         bk.flow(),
			SalaryMean:   stats.Mean,
			SalaryMedian: stats.Median,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Period < rows[j].Period })

	var running int64
	for i := range rows {
		running += rows[i].Balance
		rows[i].CumulativeBalance = running
	}
	return rows
}

// ByChain summarizes every productive chain, Other included
func (b *Battery) ByChain(records []domain.EnrichedMovement) []domain.ChainRow {
	g := groupBy(records, byChain, true)
	subclasses := distinct(records, byChain, bySubclass)
	municipalities := distinct(records, byChain, byMunicipality)
	total := g.totalAdmissions()

	rows := make([]domain.ChainRow, 0, len(g.keys))
	for _, chain := range g.keys {
		bk := g.buckets[chain]
		stats := bk.stats()
		rows = append(rows, domain.ChainRow{
			Chain:             chain,
			Flow:              bk.flow(),
			SalaryMean:        stats.Mean,
			SalaryMedian:      stats.Median,
			SalaryStd:         stats.Std,
			Subclasses:        subclasses[chain],
			Municipalities:    municipalities[chain],
			AdmissionsPercent: share(bk.admissions, total),
			Color:             b.table.ColorOf(chain),
			Description:       b.table.Describe(chain),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Admissions != rows[j].Admissions {
			return rows[i].Admissions > rows[j].Admissions
		}
		return rows[i].Chain < rows[j].Chain
	})
	return rows
}

type periodChain struct {
	period, chain string
}

// TimeseriesByChain is the monthly series split by chain
func (b *Battery) TimeseriesByChain(records []domain.EnrichedMovement) []domain.ChainPeriodRow {
	g := groupBy(records, func(r *domain.EnrichedMovement) periodChain {
		return periodChain{r.Period, r.Chain}
	}, false)

	rows := make([]domain.ChainPeriodRow, 0, len(g.keys))
	for _, k := range g.keys {
		rows = append(rows, domain.ChainPeriodRow{Period: k.period, Chain: k.chain, Flow: g.buckets[k].flow()})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Period != rows[j].Period {
			return rows[i].Period < rows[j].Period
		}
		return rows[i].Chain < rows[j].Chain
	})
	return rows
}

type subclassChain struct {
	subclass, chain string
}

// BySubclass summarizes every CNAE subclass
func (b *Battery) BySubclass(records []domain.EnrichedMovement) []domain.SubclassRow {
	key := func(r *domain.EnrichedMovement) subclassChain { return subclassChain{r.Subclass, r.Chain} }
	g := groupBy(records, key, true)
	municipalities := distinct(records, key, byMunicipality)

	rows := make([]domain.SubclassRow, 0, len(g.keys))
	for _, k := range g.keys {
		bk := g.buckets[k]
		stats := bk.stats()
		desc, ok := b.subclassDescriptions[k.subclass]
		if !ok || desc == "" {
			desc = NotSpecified
		}
		rows = append(rows, domain.SubclassRow{
			Subclass:       k.subclass,
			Chain:          k.chain,
			Flow:           bk.flow(),
			SalaryMean:     stats.Mean,
			SalaryMedian:   stats.Median,
			Municipalities: municipalities[k],
			Description:    desc,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Admissions != rows[j].Admissions {
			return rows[i].Admissions > rows[j].Admissions
		}
		if rows[i].Subclass != rows[j].Subclass {
			return rows[i].Subclass < rows[j].Subclass
		}
		return rows[i].Chain < rows[j].Chain
	})
	return rows
}

// ByMunicipality summarizes every municipality with its dominant chain
func (b *Battery) ByMunicipality(records []domain.EnrichedMovement) []domain.MunicipalityRow {
	g := groupBy(records, byMunicipality, true)
	dominantChain := dominant(records, byMunicipality, byChain)

	rows := make([]domain.MunicipalityRow, 0, len(g.keys))
	for _, code := range g.keys {
		bk := g.buckets[code]
		name, ok := b.municipalityNames[code]
		if !ok || name == "" {
			name = code
		}
		rows = append(rows, domain.MunicipalityRow{
			Code:          code,
			Name:          name,
			Flow:          bk.flow(),
			SalaryMean:    bk.mean(),
			DominantChain: dominantChain[code],
		})
	}
	sortMunicipalities(rows)
	return rows
}

// TopMunicipalities keeps the first n municipalities by admissions
func (b *Battery) TopMunicipalities(records []domain.EnrichedMovement) []domain.MunicipalityRow {
	rows := b.ByMunicipality(records)
	if len(rows) > b.topN {
		rows = rows[:b.topN]
	}
	return rows
}

func sortMunicipalities(rows []domain.MunicipalityRow) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Admissions != rows[j].Admissions {
			return rows[i].Admissions > rows[j].Admissions
		}
		return rows[i].Code < rows[j].Code
	})
}

// demographic reduces records by one display dimension and orders rows with less
func (b *Battery) demographic(records []domain.EnrichedMovement, field func(*domain.EnrichedMovement) string,
	less func(a, b string, statsA, statsB domain.DemographicStats) bool,
) ([]string, []domain.DemographicStats) {
	g := groupBy(records, field, true)
	total := g.totalAdmissions()

	labels := make([]string, len(g.keys))
	copy(labels, g.keys)
	values := make(map[string]domain.DemographicStats, len(labels))
	for _, label := range labels {
		bk := g.buckets[label]
		stats := bk.stats()
		values[label] = domain.DemographicStats{
			Flow:         bk.flow(),
			SalaryMean:   stats.Mean,
			SalaryMedian: stats.Median,
			Percent:      share(bk.admissions, total),
		}
	}
	sort.Slice(labels, func(i, j int) bool {
		return less(labels[i], labels[j], values[labels[i]], values[labels[j]])
	})

	out := make([]domain.DemographicStats, len(labels))
	for i, label := range labels {
		out[i] = values[label]
	}
	return labels, out
}

func labelOrder(a, b string, _, _ domain.DemographicStats) bool { return a < b }

func admissionsOrder(a, b string, sa, sb domain.DemographicStats) bool {
	if sa.Admissions != sb.Admissions {
		return sa.Admissions > sb.Admissions
	}
	return a < b
}

// BySex breaks the movements down by sex
func (b *Battery) BySex(records []domain.EnrichedMovement) []domain.SexRow {
	labels, stats := b.demographic(records, func(r *domain.EnrichedMovement) string { return r.SexName }, labelOrder)
	rows := make([]domain.SexRow, len(labels))
	for i := range labels {
		rows[i] = domain.SexRow{Sex: labels[i], DemographicStats: stats[i]}
	}
	return rows
}

// ByAgeBracket breaks the movements down by age bracket, in bracket order
func (b *Battery) ByAgeBracket(records []domain.EnrichedMovement) []domain.AgeBracketRow {
	labels, stats := b.demographic(records, func(r *domain.EnrichedMovement) string { return r.AgeBracket }, b.bracketOrder)
	rows := make([]domain.AgeBracketRow, len(labels))
	for i := range labels {
		rows[i] = domain.AgeBracketRow{Bracket: labels[i], DemographicStats: stats[i]}
	}
	return rows
}

func (b *Battery) bracketOrder(x, y string, _, _ domain.DemographicStats) bool {
	return b.bracketLess(x, y)
}

func (b *Battery) bracketLess(x, y string) bool {
	rx, ry := b.ages.Rank(x), b.ages.Rank(y)
	if rx != ry {
		return rx < ry
	}
	return x < y
}

// ByEducation breaks the movements down by education level
func (b *Battery) ByEducation(records []domain.EnrichedMovement) []domain.EducationRow {
	labels, stats := b.demographic(records, func(r *domain.EnrichedMovement) string { return r.EducationName }, admissionsOrder)
	rows := make([]domain.EducationRow, len(labels))
	for i := range labels {
		rows[i] = domain.EducationRow{Education: labels[i], DemographicStats: stats[i]}
	}
	return rows
}

// ByEmployerSize breaks the movements down by employer size
func (b *Battery) ByEmployerSize(records []domain.EnrichedMovement) []domain.EmployerSizeRow {
	labels, stats := b.demographic(records, func(r *domain.EnrichedMovement) string { return r.EmployerSizeName }, labelOrder)
	rows := make([]domain.EmployerSizeRow, len(labels))
	for i := range labels {
		rows[i] = domain.EmployerSizeRow{Size: labels[i], DemographicStats: stats[i]}
	}
	return rows
}

// Seasonality aggregates calendar months across years. The index is the month's
// admissions over the mean monthly admissions, times 100.
func (b *Battery) Seasonality(records []domain.EnrichedMovement) []domain.SeasonalityRow {
	g := groupBy(records, func(r *domain.EnrichedMovement) int { return r.Month }, false)

	rows := make([]domain.SeasonalityRow, 0, len(g.keys))
	var sum float64
	for _, month := range g.keys {
		bk := g.buckets[month]
		sum += float64(bk.admissions)
		rows = append(rows, domain.SeasonalityRow{Month: month, MonthName: MonthName(month), Flow: bk.flow()})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Month < rows[j].Month })

	avg := sum / float64(len(rows))
	for i := range rows {
		rows[i].Index = round(float64(rows[i].Admissions)/avg*100, 1)
	}
	return rows
}

// Yearly summarizes calendar years
func (b *Battery) Yearly(records []domain.EnrichedMovement) []domain.YearRow {
	g := groupBy(records, func(r *domain.EnrichedMovement) int { return r.Year }, true)

	rows := make([]domain.YearRow, 0, len(g.keys))
	for _, year := range g.keys {
		bk := g.buckets[year]
		rows = append(rows, domain.YearRow{Year: year, Flow: bk.flow(), SalaryMean: bk.mean()})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Year < rows[j].Year })
	return rows
}

type chainLabel struct {
	chain, label string
}

func crossChain(records []domain.EnrichedMovement, field func(*domain.EnrichedMovement) string, withSalary bool) *groups[chainLabel] {
	return groupBy(records, func(r *domain.EnrichedMovement) chainLabel {
		return chainLabel{r.Chain, field(r)}
	}, withSalary)
}

func sortChainLabels(keys []chainLabel, less func(a, b string) bool) {
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].chain != keys[j].chain {
			return keys[i].chain < keys[j].chain
		}
		return less(keys[i].label, keys[j].label)
	})
}

func lexical(a, b string) bool { return a < b }

// CrossChainSex cross-tabulates chain and sex
func (b *Battery) CrossChainSex(records []domain.EnrichedMovement) []domain.ChainSexRow {
	g := crossChain(records, func(r *domain.EnrichedMovement) string { return r.SexName }, true)
	sortChainLabels(g.keys, lexical)

	rows := make([]domain.ChainSexRow, 0, len(g.keys))
	for _, k := range g.keys {
		bk := g.buckets[k]
		rows = append(rows, domain.ChainSexRow{Chain: k.chain, Sex: k.label, Flow: bk.flow(), SalaryMean: bk.mean()})
	}
	return rows
}

// CrossChainAge cross-tabulates chain and age bracket
func (b *Battery) CrossChainAge(records []domain.EnrichedMovement) []domain.ChainAgeRow {
	g := crossChain(records, func(r *domain.EnrichedMovement) string { return r.AgeBracket }, false)
	sortChainLabels(g.keys, b.bracketLess)

	rows := make([]domain.ChainAgeRow, 0, len(g.keys))
	for _, k := range g.keys {
		rows = append(rows, domain.ChainAgeRow{Chain: k.chain, Bracket: k.label, Flow: g.buckets[k].flow()})
	}
	return rows
}

// CrossChainEducation cross-tabulates chain and education level
func (b *Battery) CrossChainEducation(records []domain.EnrichedMovement) []domain.ChainEducationRow {
	g := crossChain(records, func(r *domain.EnrichedMovement) string { return r.EducationName }, true)
	sortChainLabels(g.keys, lexical)

	rows := make([]domain.ChainEducationRow, 0, len(g.keys))
	for _, k := range g.keys {
		bk := g.buckets[k]
		rows = append(rows, domain.ChainEducationRow{Chain: k.chain, Education: k.label, Flow: bk.flow(), SalaryMean: bk.mean()})
	}
	return rows
}

// SalaryDistribution is the compensation distribution of each chain.
// Chains without a single valid salary are omitted.
func (b *Battery) SalaryDistribution(records []domain.EnrichedMovement) []domain.SalaryDistributionRow {
	g := groupBy(records, byChain, true)

	rows := make([]domain.SalaryDistributionRow, 0, len(g.keys))
	for _, chain := range g.keys {
		stats := g.buckets[chain].stats()
		if stats.N == 0 {
			continue
		}
		rows = append(rows, domain.SalaryDistributionRow{
			Chain: chain,
			Min:   stats.Min,
			P10:   stats.P10,
			P25:   stats.P25,
			P50:   stats.Median,
			P75:   stats.P75,
			P90:   stats.P90,
			Max:   stats.Max,
			Mean:  stats.Mean,
			Std:   stats.Std,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Chain < rows[j].Chain })
	return rows
}

type cubeKey struct {
	mun, period, chain string
}

func cubeKeyOf(r *domain.EnrichedMovement) cubeKey {
	return cubeKey{r.Municipality, r.Period, r.Chain}
}

func cubeLess(a, b cubeKey) bool {
	if a.mun != b.mun {
		return a.mun < b.mun
	}
	if a.period != b.period {
		return a.period < b.period
	}
	return a.chain < b.chain
}

// GranularCube reduces records to municipality x period x chain cells
func (b *Battery) GranularCube(records []domain.EnrichedMovement) []domain.CubeRow {
	g := groupBy(records, cubeKeyOf, true)
	sort.Slice(g.keys, func(i, j int) bool { return cubeLess(g.keys[i], g.keys[j]) })

	rows := make([]domain.CubeRow, 0, len(g.keys))
	for _, k := range g.keys {
		bk := g.buckets[k]
		rows = append(rows, domain.CubeRow{
			Municipality: k.mun,
			Period:       k.period,
			Chain:        k.chain,
			Flow:         bk.flow(),
			SalaryMean:   round(bk.mean(), 2),
		})
	}
	return rows
}

type cubeDimKey struct {
	cubeKey
	label string
}

func (b *Battery) narrowCube(records []domain.EnrichedMovement, field func(*domain.EnrichedMovement) string,
	withSalary bool, less func(a, b string) bool,
) *groups[cubeDimKey] {
	g := groupBy(records, func(r *domain.EnrichedMovement) cubeDimKey {
		return cubeDimKey{cubeKeyOf(r), field(r)}
	}, withSalary)
	sort.Slice(g.keys, func(i, j int) bool {
		if g.keys[i].cubeKey != g.keys[j].cubeKey {
			return cubeLess(g.keys[i].cubeKey, g.keys[j].cubeKey)
		}
		return less(g.keys[i].label, g.keys[j].label)
	})
	return g
}

// GranularDimensions builds one narrow cube per demographic dimension
func (b *Battery) GranularDimensions(records []domain.EnrichedMovement) domain.GranularDimensions {
	var dims domain.GranularDimensions

	sex := b.narrowCube(records, func(r *domain.EnrichedMovement) string { return r.SexName }, false, lexical)
	dims.BySex = make([]domain.CubeSexRow, 0, len(sex.keys))
	for _, k := range sex.keys {
		dims.BySex = append(dims.BySex, domain.CubeSexRow{
			Municipality: k.mun, Period: k.period, Chain: k.chain, Sex: k.label, Flow: sex.buckets[k].flow(),
		})
	}

	age := b.narrowCube(records, func(r *domain.EnrichedMovement) string { return r.AgeBracket }, false, b.bracketLess)
	dims.ByAgeBracket = make([]domain.CubeAgeRow, 0, len(age.keys))
	for _, k := range age.keys {
		dims.ByAgeBracket = append(dims.ByAgeBracket, domain.CubeAgeRow{
			Municipality: k.mun, Period: k.period, Chain: k.chain, Bracket: k.label, Flow: age.buckets[k].flow(),
		})
	}

	edu := b.narrowCube(records, func(r *domain.EnrichedMovement) string { return r.EducationName }, true, lexical)
	dims.ByEducation = make([]domain.CubeEducationRow, 0, len(edu.keys))
	for _, k := range edu.keys {
		bk := edu.buckets[k]
		dims.ByEducation = append(dims.ByEducation, domain.CubeEducationRow{
			Municipality: k.mun, Period: k.period, Chain: k.chain, Education: k.label,
			Flow: bk.flow(), SalaryMean: round(bk.mean(), 2),
		})
	}

	size := b.narrowCube(records, func(r *domain.EnrichedMovement) string { return r.EmployerSizeName }, false, lexical)
	dims.ByEmployerSize = make([]domain.CubeSizeRow, 0, len(size.keys))
	for _, k := range size.keys {
		dims.ByEmployerSize = append(dims.ByEmployerSize, domain.CubeSizeRow{
			Municipality: k.mun, Period: k.period, Chain: k.chain, Size: k.label, Flow: size.buckets[k].flow(),
		})
	}
	return dims
}
