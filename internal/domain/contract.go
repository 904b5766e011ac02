package domain

// ContractStatus is reported by the upstream contract/liquidity fetcher and
// describes whether a tradable contract could be structurally located.
type ContractStatus string

const (
	ContractOK              ContractStatus = "OK"
	ContractLEAPFallback    ContractStatus = "LEAP_FALLBACK"
	ContractNoExpirations   ContractStatus = "NO_EXPIRATIONS_IN_WINDOW"
	ContractFailedLiquidity ContractStatus = "FAILED_LIQUIDITY_FILTER"
	ContractFailedGreeks    ContractStatus = "FAILED_GREEKS_FILTER"
	ContractFailedIV        ContractStatus = "FAILED_IV_FILTER"
	ContractNoChain         ContractStatus = "NO_CHAIN_RETURNED"
	ContractNoCalls         ContractStatus = "NO_CALLS_AVAILABLE"
	ContractNoPuts          ContractStatus = "NO_PUTS_AVAILABLE"
)

// Usable reports whether the located contract can be scored. LEAP_FALLBACK is
// structurally usable; it is penalized in scoring, not gated.
func (cs ContractStatus) Usable() bool {
	return cs == ContractOK || cs == ContractLEAPFallback
}

// Known reports whether the status is one of the fetcher's documented values.
func (cs ContractStatus) Known() bool {
	switch cs {
	case ContractOK, ContractLEAPFallback, ContractNoExpirations,
		ContractFailedLiquidity, ContractFailedGreeks, ContractFailedIV,
		ContractNoChain, ContractNoCalls, ContractNoPuts:
		return true
	}
	return false
}
