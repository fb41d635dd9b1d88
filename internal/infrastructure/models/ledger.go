package models

// Ledger lists the tables backing the investment ledger, in dependency order
func Ledger() []interface{} {
	return []interface{}{
		&User{},
		&Investment{},
		&Referral{},
		&ReferralCommission{},
		&Transaction{},
		&Notification{},
	}
}
