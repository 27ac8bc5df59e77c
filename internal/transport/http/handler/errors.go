package handler

// User-facing messages. The token messages are deliberately uniform: the
// client is never told whether a token was malformed, tampered or expired.
const (
	errUnexpected      = "An unexpected error happened!"
	errInvalidEmail    = "Please enter a valid email address!"
	errNoAccount       = "We couldn't find an account with that email!"
	errTooManyRequests = "Too many reset requests! Please try again later."
	errTokenNotValid   = "Token is not valid!"
	errTokenInvalid    = "Invalid reset token or token has expired!"
	errPasswordShort   = "Your password must be 8 characters long!"
	errPasswordsDiffer = "Passwords do not match!"

	msgCheckEmail    = "Please check your email at "
	msgResetComplete = "Successfully reset your password!"
)
