package bets

import (
	"errors"

	"github.com/shopspring/decimal"
)

var ErrInvalidOdds = errors.New("american odds must be <= -100 or >= 100")

var (
	decOne     = decimal.NewFromInt(1)
	decHundred = decimal.NewFromInt(100)
)

// ValidAmericanOdds rejeita o intervalo aberto (-100, 100), que não existe
// em odds americanas.
func ValidAmericanOdds(odds int) bool {
	return odds >= 100 || odds <= -100
}

// DecimalOdds converte odds americanas para decimais.
// +150 -> 2.5; -200 -> 1.5.
func DecimalOdds(american int) (decimal.Decimal, error) {
	if !ValidAmericanOdds(american) {
		return decimal.Decimal{}, ErrInvalidOdds
	}
	a := decimal.NewFromInt(int64(american))
	if american > 0 {
		return decOne.Add(a.Div(decHundred)), nil
	}
	return decOne.Add(decHundred.Div(a.Neg())), nil
}

// AmericanOdds converte odds decimais de volta para americanas, arredondando
// para o inteiro mais próximo. dec precisa ser > 1.
func AmericanOdds(dec decimal.Decimal) (int, error) {
	if dec.LessThanOrEqual(decOne) {
		return 0, ErrInvalidOdds
	}
	profit := dec.Sub(decOne)
	if dec.GreaterThanOrEqual(decimal.NewFromInt(2)) {
		return int(profit.Mul(decHundred).Round(0).IntPart()), nil
	}
	return int(decHundred.Div(profit).Neg().Round(0).IntPart()), nil
}

// PotentialPayout calcula o retorno total (stake + prêmio) em centavos,
// arredondado para o centavo mais próximo.
func PotentialPayout(stakeCents int64, american int) (int64, error) {
	dec, err := DecimalOdds(american)
	if err != nil {
		return 0, err
	}
	return decimal.NewFromInt(stakeCents).Mul(dec).Round(0).IntPart(), nil
}

// CombineParlayOdds multiplica as odds decimais das pernas e devolve o par
// (odds americanas combinadas, odds decimais combinadas).
func CombineParlayOdds(legs []int) (int, decimal.Decimal, error) {
	combined := decOne
	for _, a := range legs {
		dec, err := DecimalOdds(a)
		if err != nil {
			return 0, decimal.Decimal{}, err
		}
		combined = combined.Mul(dec)
	}
	american, err := AmericanOdds(combined)
	if err != nil {
		return 0, decimal.Decimal{}, err
	}
	return american, combined, nil
}

// ParlayPayout calcula o retorno total de um parlay. pushedLegs entram
// com odds 1.0 (convenção da indústria): a perna é neutralizada.
func ParlayPayout(stakeCents int64, legOdds []int, pushedLegs map[int]bool) int64 {
	combined := decOne
	for i, a := range legOdds {
		if pushedLegs[i] {
			continue
		}
		dec, err := DecimalOdds(a)
		if err != nil {
			continue
		}
		combined = combined.Mul(dec)
	}
	return decimal.NewFromInt(stakeCents).Mul(combined).Round(0).IntPart()
}
