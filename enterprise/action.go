package enterprise

import "fmt"

// UserAction is a recognized business action a caller can declare when
// requesting an assessment. The declared action is sent strictly: Verify
// rejects values outside this set before any request goes out. The action
// echoed back in TokenProperties stays a raw string; use ParseUserAction
// to interpret it.
type UserAction string

const (
	ActionSignup               UserAction = "signup"
	ActionLogin                UserAction = "login"
	ActionPasswordReset        UserAction = "password_reset"
	ActionGetPrice             UserAction = "get_price"
	ActionCartAdd              UserAction = "cart_add"
	ActionCartView             UserAction = "cart_view"
	ActionPaymentAdd           UserAction = "payment_add"
	ActionCheckout             UserAction = "checkout"
	ActionTransactionConfirmed UserAction = "transaction_confirmed"
	ActionPlaySong             UserAction = "play_song"
)

// String returns the wire representation of the action.
func (a UserAction) String() string {
	return string(a)
}

// IsValid reports whether the action is one of the recognized actions.
func (a UserAction) IsValid() bool {
	switch a {
	case ActionSignup, ActionLogin, ActionPasswordReset, ActionGetPrice,
		ActionCartAdd, ActionCartView, ActionPaymentAdd, ActionCheckout,
		ActionTransactionConfirmed, ActionPlaySong:
		return true
	default:
		return false
	}
}

// ParseUserAction parses a wire string into a UserAction.
func ParseUserAction(s string) (UserAction, error) {
	a := UserAction(s)
	if !a.IsValid() {
		return "", fmt.Errorf("unrecognized user action %q", s)
	}
	return a, nil
}

// AllUserActions returns every recognized user action.
func AllUserActions() []UserAction {
	return []UserAction{
		ActionSignup,
		ActionLogin,
		ActionPasswordReset,
		ActionGetPrice,
		ActionCartAdd,
		ActionCartView,
		ActionPaymentAdd,
		ActionCheckout,
		ActionTransactionConfirmed,
		ActionPlaySong,
	}
}
