package tax

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/medlocum/locumpay/engine/internal/domain"
)

//go:embed tables.json
var embeddedTables embed.FS

// Bracket is one progressive tax bracket. Threshold is the lower bound of
// income taxed at Rate; brackets are ordered by ascending threshold.
type Bracket struct {
	Threshold decimal.Decimal `json:"threshold"`
	Rate      decimal.Decimal `json:"rate"`
}

// FICATable holds payroll tax rates and caps for one year.
type FICATable struct {
	SocialSecurityRate           decimal.Decimal                         `json:"socialSecurityRate"`
	SocialSecurityWageBase       decimal.Decimal                         `json:"socialSecurityWageBase"`
	MedicareRate                 decimal.Decimal                         `json:"medicareRate"`
	AdditionalMedicareRate       decimal.Decimal                         `json:"additionalMedicareRate"`
	AdditionalMedicareThresholds map[domain.FilingStatus]decimal.Decimal `json:"additionalMedicareThresholds"`
}

// SDITable holds a state disability insurance rate and its wage base.
type SDITable struct {
	Rate     decimal.Decimal `json:"rate"`
	WageBase decimal.Decimal `json:"wageBase"`
}

// StateTable describes one state's income tax: a flat rate, a bracket
// schedule, or neither (no wage income tax).
type StateTable struct {
	FlatRate *decimal.Decimal `json:"flatRate,omitempty"`
	Brackets []Bracket        `json:"brackets,omitempty"`
}

// YearTable is the complete rate snapshot for one tax year. States absent
// from SDI or States levy no tax in that category.
type YearTable struct {
	Year               int                                     `json:"year"`
	StandardDeduction  map[domain.FilingStatus]decimal.Decimal `json:"standardDeduction"`
	ExemptionAllowance decimal.Decimal                         `json:"exemptionAllowance"`
	FederalBrackets    map[domain.FilingStatus][]Bracket       `json:"federalBrackets"`
	FICA               FICATable                               `json:"fica"`
	SDI                map[string]SDITable                     `json:"sdi"`
	States             map[string]StateTable                   `json:"states"`
}

// Provider supplies rate tables keyed by tax year.
type Provider interface {
	Table(year int) (*YearTable, error)
}

// StaticProvider serves an in-memory set of year tables.
type StaticProvider struct {
	years map[int]*YearTable
}

type tablesFile struct {
	Years map[string]*YearTable `json:"years"`
}

// NewStaticProvider returns a provider loaded from the embedded snapshot.
func NewStaticProvider() (*StaticProvider, error) {
	data, err := embeddedTables.ReadFile("tables.json")
	if err != nil {
		return nil, fmt.Errorf("read embedded tax tables: %w", err)
	}
	return parseTables(data)
}

// LoadFile returns a provider loaded from an external snapshot file, so rate
// updates ship as data rather than code.
func LoadFile(path string) (*StaticProvider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tax tables %s: %w", path, err)
	}
	return parseTables(data)
}

func parseTables(data []byte) (*StaticProvider, error) {
	var f tablesFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse tax tables: %w", err)
	}
	years := make(map[int]*YearTable, len(f.Years))
	for key, table := range f.Years {
		year, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("parse tax table year %q: %w", key, err)
		}
		table.Year = year
		years[year] = table
	}
	if len(years) == 0 {
		return nil, fmt.Errorf("tax tables: no years defined")
	}
	return &StaticProvider{years: years}, nil
}

// Table returns the rate table for the given year.
func (p *StaticProvider) Table(year int) (*YearTable, error) {
	table, ok := p.years[year]
	if !ok {
		return nil, fmt.Errorf("%w: %d", domain.ErrUnknownTaxYear, year)
	}
	return table, nil
}

// Years lists the years the provider covers.
func (p *StaticProvider) Years() []int {
	years := make([]int, 0, len(p.years))
	for y := range p.years {
		years = append(years, y)
	}
	return years
}
