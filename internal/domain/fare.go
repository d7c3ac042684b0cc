package domain

import "railbook/internal/domain/models"

// TaxPercent is applied on top of the base fare.
const TaxPercent int64 = 5

// roundPercent returns amount*pct/100 rounded half up, in whole currency units.
func roundPercent(amount, pct int64) int64 {
	return (amount*pct + 50) / 100
}

// Quote prices seatCount seats of class on train.
func Quote(train models.Train, class string, seatCount int) (models.Fare, error) {
	unit, ok := train.UnitPrice(class)
	if !ok {
		return models.Fare{}, ValidationError{Field: "class", Msg: class + " is not sold on " + train.ID, Err: ErrUnknownClass}
	}
	if seatCount < 0 {
		seatCount = 0
	}
	base := unit * int64(seatCount)
	tax := roundPercent(base, TaxPercent)
	return models.Fare{
		Base:  base,
		Tax:   tax,
		Total: base + tax,
	}, nil
}
