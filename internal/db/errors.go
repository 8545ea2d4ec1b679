package db

import "errors"

// Domain-level lookup sentinels.
var (
	ErrClubNotFound          = errors.New("club not found")
	ErrMembershipNotFound    = errors.New("membership not found")
	ErrAccessRequestNotFound = errors.New("access request not found")
	ErrUserNotFound          = errors.New("user not found")
	ErrEventNotFound         = errors.New("event not found")
)
