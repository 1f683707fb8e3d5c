package service

import (
	"errors"
	"fmt"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/internal/auth"
	"github.com/mmynk/settleup/internal/money"
	"github.com/mmynk/settleup/internal/settlement"
	"github.com/mmynk/settleup/internal/storage"
)

var (
	// ErrNotMember is returned when the caller is not in the group they act on.
	ErrNotMember = errors.New("not a member of this group")

	// ErrMemberInUse is returned when removing a member who still appears in
	// the group's transactions or settlements.
	ErrMemberInUse = errors.New("member has transactions or settlements in this group")

	errInvalidArgument = errors.New("invalid argument")
)

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errInvalidArgument, fmt.Sprintf(format, args...))
}

// toConnectError maps domain and storage errors to Connect codes. Errors
// that already are *connect.Error pass through.
func toConnectError(err error) error {
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return connectErr
	}

	switch {
	case errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, ErrNotMember):
		return connect.NewError(connect.CodePermissionDenied, err)
	case errors.Is(err, ErrMemberInUse):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.Is(err, auth.ErrMissingToken), errors.Is(err, auth.ErrInvalidToken):
		return connect.NewError(connect.CodeUnauthenticated, err)
	case errors.Is(err, settlement.ErrUnbalanced):
		return connect.NewError(connect.CodeDataLoss, err)
	case isInvalidInput(err):
		return connect.NewError(connect.CodeInvalidArgument, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}

func isInvalidInput(err error) bool {
	for _, target := range []error{
		errInvalidArgument,
		money.ErrInvalidAmount,
		money.ErrNegativeAmount,
		money.ErrTooPrecise,
		settlement.ErrNegativeAmount,
		settlement.ErrNoParticipants,
		settlement.ErrSplitMismatch,
		settlement.ErrZeroWeight,
		settlement.ErrUnknownParticipant,
		settlement.ErrTotalBelowItems,
		settlement.ErrWeightTooLarge,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
