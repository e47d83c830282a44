package settlement

import (
	"time"

	"dare-backend/internal/models"
)

// ClaimOrder is the priority in which a wallet's entitlements on one dare are paid.
var ClaimOrder = []models.PayoutKind{
	models.PayoutKindCreatorFee,
	models.PayoutKindCompleterReward,
	models.PayoutKindWinnings,
}

// Entitlements lists what wallet could claim on d right now, in ClaimOrder.
// Winnings yield one entry per eligible bet. Amounts that floor to zero are left out.
func Entitlements(d *models.Dare, bets []models.Bet, wallet string, now time.Time) []models.Entitlement {
	var out []models.Entitlement
	add := func(kind models.PayoutKind, betID string, amount models.Lamports, err error) {
		if err == nil && amount > 0 {
			out = append(out, entitlement(kind, betID, amount))
		}
	}

	for _, kind := range ClaimOrder {
		switch kind {
		case models.PayoutKindCreatorFee:
			amount, err := CheckCreatorFee(d, wallet, now)
			add(kind, "", amount, err)
		case models.PayoutKindCompleterReward:
			amount, err := CheckCompleterReward(d, wallet, now)
			add(kind, "", amount, err)
		case models.PayoutKindWinnings:
			for i := range bets {
				if bets[i].DareID != d.ID {
					continue
				}
				amount, err := CheckWinnings(d, &bets[i], wallet, now)
				add(kind, bets[i].ID, amount, err)
			}
		}
	}

	return out
}

func entitlement(kind models.PayoutKind, betID string, amount models.Lamports) models.Entitlement {
	return models.Entitlement{
		Kind:      kind,
		BetID:     betID,
		Amount:    amount,
		AmountSOL: models.FormatSOL(amount),
	}
}
