// Package payroll estimates gross pay from recorded attendance.
package payroll

import (
	"fmt"

	"timekeeper/internal/config"
	"timekeeper/internal/logging"
	"timekeeper/internal/types"
)

// Estimate is the structured salary result. Rendering is left to callers.
type Estimate struct {
	PresentDays int
	Hours       int
	HourlyRate  int
	Gross       int
	Currency    string
}

// Estimator multiplies present days by a fixed workday and hourly rate.
type Estimator struct {
	hoursPerDay int
	hourlyRate  int
	currency    string
}

// NewEstimator returns an estimator using cfg. Zero values fall back to an
// eight hour day at 144 per hour.
func NewEstimator(cfg config.PayrollConfig) *Estimator {
	e := &Estimator{hoursPerDay: cfg.HoursPerDay, hourlyRate: cfg.HourlyRate, currency: cfg.Currency}
	if e.hoursPerDay <= 0 {
		e.hoursPerDay = 8
	}
	if e.hourlyRate <= 0 {
		e.hourlyRate = 144
	}
	return e
}

// Estimate counts records whose status is Present, case-insensitively.
func (e *Estimator) Estimate(records []types.Record) Estimate {
	days := 0
	for _, r := range records {
		if r.Status.IsPresent() {
			days++
		}
	}
	hours := days * e.hoursPerDay
	est := Estimate{
		PresentDays: days,
		Hours:       hours,
		HourlyRate:  e.hourlyRate,
		Gross:       hours * e.hourlyRate,
		Currency:    e.currency,
	}
	logging.Payroll("estimate: days=%d hours=%d gross=%d", est.PresentDays, est.Hours, est.Gross)
	return est
}

// String renders the estimate as the multi-line chat reply.
func (est Estimate) String() string {
	return fmt.Sprintf(
		"📊 Based on your timesheet:\n"+
			"➤ Present Days: %d\n"+
			"➤ Total Hours: %d hrs\n"+
			"➤ Hourly Rate: %s%d\n"+
			"💰 Expected Salary: %s%d\n"+
			"📝 *Note: This is the gross salary without TDS deduction.*",
		est.PresentDays, est.Hours, est.Currency, est.HourlyRate, est.Currency, est.Gross,
	)
}
