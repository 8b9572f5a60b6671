package domain

import "errors"

var (
	ErrVoteNotFound     = errors.New("vote not found")
	ErrVoterNotFound    = errors.New("voter not found")
	ErrPositionNotFound = errors.New("position not found")
	ErrPositionExists   = errors.New("position already exists")
	ErrInvalidCandidate = errors.New("candidate does not belong to this position")
	ErrAlreadyVoted     = errors.New("voucher has already voted")
	ErrVotingClosed     = errors.New("voting is not open")
	ErrInvalidBallot    = errors.New("invalid ballot")

	// ErrRunoffUnavailable is the collapsed form of the runoff lookup and state
	// errors below; every one of them matches it with errors.Is.
	ErrRunoffUnavailable      = errors.New("runoff election not found or not in the required state")
	ErrRunoffNotFound         = &runoffError{msg: "runoff election not found"}
	ErrRunoffNotPending       = &runoffError{msg: "runoff election already started"}
	ErrRunoffNotActive        = &runoffError{msg: "runoff election is not active"}
	ErrInvalidRunoffCandidate = errors.New("invalid candidate for this runoff election")
	ErrRunoffExists           = errors.New("runoff election already exists for this position and round")

	ErrInvalidElectionTransition = errors.New("invalid election status transition")

	ErrCodeSpaceExhausted = errors.New("verification code generation exhausted its retry budget")
	ErrCodeTaken          = errors.New("verification code already in use")

	ErrAdminNotFound = errors.New("admin not found or inactive")
	ErrAdminExists   = errors.New("admin username already exists")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrValidation         = errors.New("validation failed")
	ErrInternal           = errors.New("internal server error")
)

type runoffError struct {
	msg string
}

func (e *runoffError) Error() string { return e.msg }

func (e *runoffError) Is(target error) bool { return target == ErrRunoffUnavailable }
