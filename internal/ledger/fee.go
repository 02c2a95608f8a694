package ledger

// MinFee is the smallest fee charged on a send, in satoshis.
const MinFee = 100

// FeeDivisor sets the proportional fee: one unit per FeeDivisor sent.
const FeeDivisor = 1000

// Fee returns max(MinFee, amount/FeeDivisor) with integer floor division.
func Fee(amount int64) int64 {
	if f := amount / FeeDivisor; f > MinFee {
		return f
	}
	return MinFee
}
