package service

import (
	"borrowly-backend/internal/domain"
)

// Action names every guarded mutation of a transaction after creation.
type Action string

const (
	ActionApprove         Action = "approve"
	ActionDecline         Action = "decline"
	ActionCancel          Action = "cancel"
	ActionConfirmPickup   Action = "confirm_pickup"
	ActionConfirmReturn   Action = "confirm_return"
	ActionFileDamageClaim Action = "file_damage_claim"
	ActionChargeLateFee   Action = "charge_late_fee"
	ActionRate            Action = "rate"
)

type actorRole int

const (
	roleBorrower actorRole = iota
	roleLender
	roleParticipant
)

// transitionRule is one row of the legal state graph: who may perform the
// action and from which statuses. The target status is what the repository's
// conditional write applies; it is recorded here so the graph is enumerable
// in one place and exhaustively testable.
type transitionRule struct {
	Actor actorRole
	From  []domain.TransactionStatus
	To    domain.TransactionStatus
}

// transitionTable is the explicit legal state graph. The controller checks it
// before any side effect; the state-gated repository write re-checks the
// pre-state at commit time, which is what makes concurrent duplicate actions
// safe (the loser matches zero rows).
var transitionTable = map[Action]transitionRule{
	ActionApprove: {
		Actor: roleLender,
		From:  []domain.TransactionStatus{domain.StatusRequested},
		To:    domain.StatusApprovedPaid,
	},
	ActionDecline: {
		Actor: roleLender,
		From:  []domain.TransactionStatus{domain.StatusRequested},
		To:    domain.StatusCancelled,
	},
	ActionCancel: {
		Actor: roleBorrower,
		From:  []domain.TransactionStatus{domain.StatusRequested, domain.StatusApprovedPaid},
		To:    domain.StatusCancelled,
	},
	ActionConfirmPickup: {
		Actor: roleLender,
		From:  []domain.TransactionStatus{domain.StatusApprovedPaid},
		To:    domain.StatusPickedUp,
	},
	// Confirm-return branches: clean returns settle to returned, degraded
	// returns park in return_pending. The table records the clean target.
	ActionConfirmReturn: {
		Actor: roleLender,
		From:  []domain.TransactionStatus{domain.StatusPickedUp, domain.StatusReturnPending},
		To:    domain.StatusReturned,
	},
	ActionFileDamageClaim: {
		Actor: roleLender,
		From:  []domain.TransactionStatus{domain.StatusPickedUp, domain.StatusReturnPending},
		To:    domain.StatusReturned,
	},
	ActionChargeLateFee: {
		Actor: roleLender,
		From:  []domain.TransactionStatus{domain.StatusPickedUp},
		To:    domain.StatusPickedUp,
	},
	ActionRate: {
		Actor: roleParticipant,
		From:  []domain.TransactionStatus{domain.StatusReturned, domain.StatusCompleted},
		To:    domain.StatusCompleted,
	},
}

// checkTransition validates actor identity, role, and current status against
// the table. Authorization failures win over state failures so an outsider
// learns nothing about transaction state.
func checkTransition(t *domain.Transaction, action Action, userID int32) error {
	rule, ok := transitionTable[action]
	if !ok {
		return domain.NewValidationError(domain.ReasonInvalidInput, "unknown action %q", action)
	}

	if !t.IsParticipant(userID) {
		return domain.NewAuthorizationError("user %d is not a party to transaction %d", userID, t.ID)
	}
	switch rule.Actor {
	case roleBorrower:
		if t.BorrowerID != userID {
			return domain.NewAuthorizationError("only the borrower may %s", action)
		}
	case roleLender:
		if t.LenderID != userID {
			return domain.NewAuthorizationError("only the lender may %s", action)
		}
	}

	for _, from := range rule.From {
		if t.Status == from {
			return nil
		}
	}
	return domain.ErrNotFoundOrWrongState
}
