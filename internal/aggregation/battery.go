package aggregation

import (
	"agrocaged/internal/classification"
	"agrocaged/internal/dimensions"
	"agrocaged/pkg/contracts/domain"
)

// MaleSexCode is the microdata code for male workers
const MaleSexCode = "1"

// DefaultTopMunicipalities is the size of the top municipalities table
const DefaultTopMunicipalities = 20

// Options carries the optional display assets of a run
type Options struct {
	MunicipalityNames    map[string]string
	SubclassDescriptions map[string]string
	TopMunicipalities    int
}

// Battery holds the lookups the tables need. It is read-only and safe for
// concurrent use.
type Battery struct {
	table                *classification.Table
	ages                 *dimensions.AgeBrackets
	municipalityNames    map[string]string
	subclassDescriptions map[string]string
	topN                 int
	maleLabel            string
}

// NewBattery creates a battery over the given lookup assets
func NewBattery(assets *classification.Assets, opts Options) *Battery {
	if opts.TopMunicipalities <= 0 {
		opts.TopMunicipalities = DefaultTopMunicipalities
	}
	return &Battery{
		table:                assets.Table,
		ages:                 assets.Dimensions.Ages,
		municipalityNames:    opts.MunicipalityNames,
		subclassDescriptions: opts.SubclassDescriptions,
		topN:                 opts.TopMunicipalities,
		maleLabel:            assets.Dimensions.Sex.Name(MaleSexCode),
	}
}

// member is one table of the battery. build returns a setter so members can run
// concurrently and be applied in one place.
type member struct {
	name  string
	build func(records []domain.EnrichedMovement) func(*domain.Dashboard)
}

func (b *Battery) members() []member {
	return []member{
		{domain.TableKPIs, func(r []domain.EnrichedMovement) func(*domain.Dashboard) {
			v := b.KPIs(r)
			return func(d *domain.Dashboard) { d.KPIs = v }
		}},
		{domain.TableTimeseries, func(r []domain.EnrichedMovement) func(*domain.Dashboard) {
			v := b.Timeseries(r)
			return func(d *domain.Dashboard) { d.Timeseries = v }
		}},
		{domain.TableByChain, func(r []domain.EnrichedMovement) func(*domain.Dashboard) {
			v := b.ByChain(r)
			return func(d *domain.Dashboard) { d.ByChain = v }
		}},
		{domain.TableTimeseriesByChain, func(r []domain.EnrichedMovement) func(*domain.Dashboard) {
			v := b.TimeseriesByChain(r)
			return func(d *domain.Dashboard) { d.TimeseriesByChain = v }
		}},
		{domain.TableBySubclass, func(r []domain.EnrichedMovement) func(*domain.Dashboard) {
			v := b.BySubclass(r)
			return func(d *domain.Dashboard) { d.BySubclass = v }
		}},
		{domain.TableByMunicipality, func(r []domain.EnrichedMovement) func(*domain.Dashboard) {
			v := b.ByMunicipality(r)
			return func(d *domain.Dashboard) { d.ByMunicipality = v }
		}},
		{domain.TableBySex, func(r []domain.EnrichedMovement) func(*domain.Dashboard) {
			v := b.BySex(r)
			return func(d *domain.Dashboard) { d.BySex = v }
		}},
		{domain.TableByAgeBracket, func(r []domain.EnrichedMovement) func(*domain.Dashboard) {
			v := b.ByAgeBracket(r)
			return func(d *domain.Dashboard) { d.ByAgeBracket = v }
		}},
		{domain.TableByEducation, func(r []domain.EnrichedMovement) func(*domain.Dashboard) {
			v := b.ByEducation(r)
			return func(d *domain.Dashboard) { d.ByEducation = v }
		}},
		{domain.TableByEmployerSize, func(r []domain.EnrichedMovement) func(*domain.Dashboard) {
			v := b.ByEmployerSize(r)
			return func(d *domain.Dashboard) { d.ByEmployerSize = v }
		}},
		{domain.TableSeasonality, func(r []domain.EnrichedMovement) func(*domain.Dashboard) {
			v := b.Seasonality(r)
			return func(d *domain.Dashboard) { d.Seasonality = v }
		}},
		{domain.TableYearly, func(r []domain.EnrichedMovement) func(*domain.Dashboard) {
			v := b.Yearly(r)
			return func(d *domain.Dashboard) { d.Yearly = v }
		}},
		{domain.TableCrossChainSex, func(r []domain.EnrichedMovement) func(*domain.Dashboard) {
			v := b.CrossChainSex(r)
			return func(d *domain.Dashboard) { d.CrossChainSex = v }
		}},
		{domain.TableCrossChainAge, func(r []domain.EnrichedMovement) func(*domain.Dashboard) {
			v := b.CrossChainAge(r)
			return func(d *domain.Dashboard) { d.CrossChainAge = v }
		}},
		{domain.TableCrossChainEducation, func(r []domain.EnrichedMovement) func(*domain.Dashboard) {
			v := b.CrossChainEducation(r)
			return func(d *domain.Dashboard) { d.CrossChainEducation = v }
		}},
		{domain.TableSalaryDistribution, func(r []domain.EnrichedMovement) func(*domain.Dashboard) {
			v := b.SalaryDistribution(r)
			return func(d *domain.Dashboard) { d.SalaryDistribution = v }
		}},
		{domain.TableTopMunicipalities, func(r []domain.EnrichedMovement) func(*domain.Dashboard) {
			v := b.TopMunicipalities(r)
			return func(d *domain.Dashboard) { d.TopMunicipalities = v }
		}},
		{domain.TableGranularCube, func(r []domain.EnrichedMovement) func(*domain.Dashboard) {
			v := b.GranularCube(r)
			return func(d *domain.Dashboard) { d.GranularCube = v }
		}},
		{domain.TableGranularDimensions, func(r []domain.EnrichedMovement) func(*domain.Dashboard) {
			v := b.GranularDimensions(r)
			return func(d *domain.Dashboard) { d.GranularDimensions = v }
		}},
	}
}
