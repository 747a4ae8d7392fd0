package ledgerstate

// RentStructure defines the cost model that determines the minimum storage deposit of an Output: the amount of tokens
// an Output must hold, proportional to its serialized size, to remain valid on the ledger.
type RentStructure struct {
	// CostPerByte is the deposit cost of a single serialized byte.
	CostPerByte uint64

	// OutputOverhead is the fixed per-output size surcharge covering the ledger's bookkeeping (output ID, block
	// references, confirmation metadata).
	OutputOverhead uint64
}

// DefaultRentStructure returns the rent parameters used when a node does not advertise its own.
func DefaultRentStructure() *RentStructure {
	return &RentStructure{
		CostPerByte:    100,
		OutputOverhead: 10,
	}
}

// MinimumStorageDeposit computes the minimum amount the given Output must hold to remain valid.
func (r *RentStructure) MinimumStorageDeposit(output Output) uint64 {
	return (uint64(len(output.Bytes())) + r.OutputOverhead) * r.CostPerByte
}
