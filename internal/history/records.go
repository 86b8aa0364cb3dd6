package history

import (
	"encoding/json"
	"fmt"

	"github.com/medlocum/locumpay/engine/internal/domain"
)

// NewContractRecord wraps a contract calculation as a history item ready to
// save.
func NewContractRecord(calc *domain.ContractCalculation) (*domain.HistoryItem, error) {
	return newRecord(domain.TypeContract, calc.Input, calc)
}

// NewPaycheckRecord wraps a paycheck calculation as a history item.
func NewPaycheckRecord(calc *domain.PaycheckCalculation) (*domain.HistoryItem, error) {
	return newRecord(domain.TypePaycheck, calc.Input, calc)
}

// NewComparisonRecord wraps a comparison result as a history item.
func NewComparisonRecord(inputs []domain.ContractInput, result *domain.ContractComparison) (*domain.HistoryItem, error) {
	return newRecord(domain.TypeComparison, inputs, result)
}

func newRecord(typ domain.CalculationType, input, result any) (*domain.HistoryItem, error) {
	rawInput, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("marshal %s input: %w", typ, err)
	}
	rawResult, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("marshal %s result: %w", typ, err)
	}
	return &domain.HistoryItem{
		Type:   typ,
		Input:  rawInput,
		Result: rawResult,
	}, nil
}
