package usecases

import "time"

// SetInvestmentSource fixes the clock and ROI draw of an investment usecase
func SetInvestmentSource(uc *InvestmentUsecase, now func() time.Time, randFloat func() float64) {
	uc.now = now
	uc.randFloat = randFloat
}

// SetUserSource fixes the code generator and password hasher of a user usecase
func SetUserSource(uc *UserUsecase, newCode func() (string, error), hash func(string) (string, error)) {
	uc.newCode = newCode
	uc.hashPassword = hash
}
