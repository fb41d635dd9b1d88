package usecases

import (
	"github.com/shopspring/decimal"
)

// AccrualObserver receives accrual and commission outcomes, typically for metrics
type AccrualObserver interface {
	ObserveAccrual(paid decimal.Decimal, matured bool)
	ObserveAccrualError()
	ObserveCommission(level int, amount decimal.Decimal)
	ObserveCommissionFailure(level int)
}

type nopObserver struct{}

func (nopObserver) ObserveAccrual(decimal.Decimal, bool)   {}
func (nopObserver) ObserveAccrualError()                   {}
func (nopObserver) ObserveCommission(int, decimal.Decimal) {}
func (nopObserver) ObserveCommissionFailure(int)           {}
