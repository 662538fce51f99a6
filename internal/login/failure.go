package login

import "time"

// FailCode is the LoginFailed error code the client maps to a dialog text.
type FailCode uint32

const (
	FailUnregisteredID       FailCode = 0
	FailIncorrectPassword    FailCode = 1
	FailIDExpired            FailCode = 2
	FailRejectedFromServer   FailCode = 3
	FailPermanentlySuspended FailCode = 4
	FailExeNotUpToDate       FailCode = 5
	FailBannedUntil          FailCode = 6
	FailServerOverpopulated  FailCode = 7
	FailCompanyCapacity      FailCode = 8
	FailBannedByDBA          FailCode = 9
	FailEmailNotConfirmed    FailCode = 10
	FailBannedByGM           FailCode = 11
	FailTempBanForDBWork     FailCode = 12
	FailSelfLock             FailCode = 13
	FailGroupNotPermittedV1  FailCode = 14
	FailGroupNotPermittedV2  FailCode = 15
	FailIDErased             FailCode = 99
	FailLoginInfoRelocated   FailCode = 100
	FailHackingInvestigation FailCode = 101
	FailBugInvestigation     FailCode = 102
	FailDeleteInProgressV1   FailCode = 103
	FailDeleteInProgressV2   FailCode = 104
)

// AbortCode is the LoginAborted reason byte.
type AbortCode uint8

const (
	AbortServerClosed    AbortCode = 1
	AbortAlreadyLoggedIn AbortCode = 2
	AbortAlreadyOnline   AbortCode = 8
)

// Failure is an authentication refusal. BanUntil is set only with
// FailBannedUntil and lands in the LoginFailed timestamp field.
type Failure struct {
	Code     FailCode
	BanUntil time.Time
}

// NewFailure wraps a bare code.
func NewFailure(code FailCode) *Failure {
	return &Failure{Code: code}
}

// BannedUntil builds the timed-ban refusal.
func BannedUntil(until time.Time) *Failure {
	return &Failure{Code: FailBannedUntil, BanUntil: until}
}
