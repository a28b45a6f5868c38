package auth

import (
	pkgerrors "github.com/hijabina/hijabina-backend/pkg/errors"
)

// Named auth failure reasons, returned in details.reason.
const (
	ReasonInvalidEmail    = "invalid-email"
	ReasonWrongPassword   = "wrong-password"
	ReasonEmailInUse      = "email-in-use"
	ReasonWeakPassword    = "weak-password"
	ReasonTooManyRequests = "too-many-requests"
	ReasonNetworkFailure  = "network-failure"
	ReasonUserNotFound    = "user-not-found"
)

var reasonMessages = map[string]string{
	ReasonInvalidEmail:    "Email tidak valid",
	ReasonWrongPassword:   "Password salah",
	ReasonEmailInUse:      "Email sudah terdaftar",
	ReasonWeakPassword:    "Password terlalu lemah (minimal 6 karakter)",
	ReasonTooManyRequests: "Terlalu banyak percobaan. Coba lagi nanti",
	ReasonNetworkFailure:  "Koneksi internet bermasalah",
	ReasonUserNotFound:    "Akun tidak ditemukan",
}

var reasonCodes = map[string]pkgerrors.Code{
	ReasonInvalidEmail:    pkgerrors.CodeValidation,
	ReasonWrongPassword:   pkgerrors.CodeUnauthorized,
	ReasonEmailInUse:      pkgerrors.CodeConflict,
	ReasonWeakPassword:    pkgerrors.CodeValidation,
	ReasonTooManyRequests: pkgerrors.CodeRateLimit,
	ReasonNetworkFailure:  pkgerrors.CodeDependency,
	ReasonUserNotFound:    pkgerrors.CodeNotFound,
}

// MessageFor returns the user-facing text for a reason, or the generic
// failure text for unknown reasons.
func MessageFor(reason string) string {
	if msg, ok := reasonMessages[reason]; ok {
		return msg
	}
	return "Terjadi kesalahan. Silakan coba lagi"
}

// ReasonError builds the typed error for a named auth failure.
func ReasonError(reason string) *pkgerrors.Error {
	code, ok := reasonCodes[reason]
	if !ok {
		code = pkgerrors.CodeInternal
	}
	return pkgerrors.New(code, MessageFor(reason)).WithDetails(map[string]any{"reason": reason})
}

func dependencyError(err error, op string) *pkgerrors.Error {
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op).
		WithDetails(map[string]any{"reason": ReasonNetworkFailure})
}
