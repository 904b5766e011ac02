package validate

import (
	"fmt"

	"github.com/voltlab/voltscan/internal/domain"
)

// contractGate maps an upstream contract-status failure or deferral straight
// to a terminal validation status, skipping every later rule. The precedence
// order mirrors the fetcher contract exactly and must not be reordered.
//
// LEAP_FALLBACK is structurally usable: it passes through here and is
// penalized later in scoring.
func contractGate(c domain.StrategyCandidate) (domain.ValidationStatus, string, bool) {
	switch c.ContractStatus {
	case domain.ContractNoExpirations:
		return domain.StatusDeferredDTE,
			"no expirations inside the requested DTE window; revisit when the chain rolls", true

	case domain.ContractFailedLiquidity:
		if !c.MarketOpen {
			return domain.StatusDeferredLiquidity,
				"liquidity filter failed with market closed; spreads unrepresentative, re-check at open", true
		}
		return domain.StatusReject,
			"liquidity filter failed during market hours; no tradable depth at acceptable spread", true

	case domain.ContractFailedGreeks:
		return domain.StatusPendingGreeks,
			"greeks missing on located contracts; awaiting model outputs", true

	case domain.ContractFailedIV:
		return domain.StatusPendingGreeks,
			"implied volatility missing on located contracts; awaiting quotes", true

	case domain.ContractNoChain:
		return domain.StatusReject,
			"no option chain returned for underlying", true

	case domain.ContractNoCalls:
		return domain.StatusReject,
			"required call side unavailable in chain", true

	case domain.ContractNoPuts:
		return domain.StatusReject,
			"required put side unavailable in chain", true

	case domain.ContractOK, domain.ContractLEAPFallback:
		return "", "", false

	default:
		// Unknown statuses are caught by the schema check before evaluation;
		// reaching here means the check was bypassed.
		return domain.StatusReject,
			fmt.Sprintf("unrecognized contract status %q", c.ContractStatus), true
	}
}
