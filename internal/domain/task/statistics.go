package task

import "github.com/shopspring/decimal"

// Statistics summarises completion across a set of tasks
type Statistics struct {
	TotalTasks     int64
	CompletedTasks int64
	OverdueTasks   int64
}

// CompletionRate is completed/total as a percentage rounded to two
// decimals, or 0 when there are no tasks.
func (s Statistics) CompletionRate() float64 {
	return Percentage(s.CompletedTasks, s.TotalTasks)
}

// Percentage returns part/whole*100 rounded to two decimals; 0 when whole is 0
func Percentage(part, whole int64) float64 {
	if whole == 0 {
		return 0
	}
	return decimal.NewFromInt(part).
		Mul(decimal.NewFromInt(100)).
		DivRound(decimal.NewFromInt(whole), 2).
		InexactFloat64()
}
