package model

// PincodeState drives the client's pincode dialog.
type PincodeState uint16

const (
	PincodeCorrect         PincodeState = 0
	PincodeAskForPin       PincodeState = 1
	PincodeMustBeChanged   PincodeState = 2
	PincodeNeedNewPin      PincodeState = 3
	PincodeCreateNewPin    PincodeState = 4
	PincodeClientWarning   PincodeState = 5
	PincodeUnableToUseKSSN PincodeState = 6
	PincodeShowButton      PincodeState = 7
	PincodeIncorrect       PincodeState = 8
)
