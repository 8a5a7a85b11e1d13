package validator

import (
	"errors"
	"regexp"
)

var (
	ErrInvalidName   = errors.New("invalid name")
	ErrInvalidMobile = errors.New("invalid mobile number")
	ErrInvalidPIN    = errors.New("invalid pin")
)

var (
	mobileRegex = regexp.MustCompile(`^\+?[0-9]{8,15}$`)
	pinRegex    = regexp.MustCompile(`^[0-9]{4,6}$`)
)

func ValidateName(name string) error {
	if len(name) < 2 || len(name) > 120 {
		return ErrInvalidName
	}
	return nil
}

func ValidateMobile(mobile string) error {
	if !mobileRegex.MatchString(mobile) {
		return ErrInvalidMobile
	}
	return nil
}

func ValidatePIN(pin string) error {
	if !pinRegex.MatchString(pin) {
		return ErrInvalidPIN
	}
	return nil
}
