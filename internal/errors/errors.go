package errors

import "github.com/pkg/errors"

var (
	// account store errors
	ErrUserNotFound         = errors.New("user not found")
	ErrAccountNotFound      = errors.New("account not found")
	ErrDuplicateAccount     = errors.New("email account already registered for this user")
	ErrAuthenticationFailed = errors.New("authentication failed")

	// face registry errors
	ErrFaceNotRegistered     = errors.New("user not registered")
	ErrNoFaceDetected        = errors.New("no face detected")
	ErrMultipleFacesDetected = errors.New("multiple faces detected")
	ErrEncodingFailed        = errors.New("failed to compute face encoding")
	ErrFaceAlreadyRegistered = errors.New("face already registered with another user")
	ErrFaceMismatch          = errors.New("face does not match registered user")
)
