// Package errors defines the sentinel errors of the accounting core and the
// Arabic user-facing messages the host dialogs display for them.
package errors

import (
	"errors"
	"fmt"
)

// License subsystem sentinel errors.
var (
	ErrLicenseNotFound       = errors.New("no license")
	ErrLicenseCorrupt        = errors.New("corrupt license")
	ErrInvalidActivationCode = errors.New("invalid activation code")
	ErrHardwareMismatch      = errors.New("hardware mismatch")
	ErrNetworkUnreachable    = errors.New("network unreachable")
	ErrNetworkTimeout        = errors.New("network timeout")
	ErrRemoteUpdateFailed    = errors.New("remote update failed")
)

// Rendering and data sentinel errors. Everything here is degraded-mode:
// logged, substituted, never fatal to a render.
var (
	ErrAssetMissing   = errors.New("asset missing")
	ErrFontDegraded   = errors.New("font fallback in use")
	ErrRowParse       = errors.New("row parse error")
	ErrLayoutOverflow = errors.New("card layout does not fit page")
)

// RemoteHTTPError carries a non-2xx status from the remote row store.
type RemoteHTTPError struct {
	StatusCode int
	Operation  string
}

// Error implements the error interface.
func (e *RemoteHTTPError) Error() string {
	return fmt.Sprintf("server error %d during %s", e.StatusCode, e.Operation)
}

// NewRemoteHTTPError creates a RemoteHTTPError for the given operation.
func NewRemoteHTTPError(status int, operation string) *RemoteHTTPError {
	return &RemoteHTTPError{StatusCode: status, Operation: operation}
}

// HardwareMismatchError wraps ErrHardwareMismatch with the observed match
// count so messages can show "N/4".
type HardwareMismatchError struct {
	Matches int
}

func (e *HardwareMismatchError) Error() string {
	return fmt.Sprintf("hardware mismatch (%d/4)", e.Matches)
}

// Unwrap lets errors.Is treat every mismatch as ErrHardwareMismatch.
func (e *HardwareMismatchError) Unwrap() error {
	return ErrHardwareMismatch
}

// UserMessage maps a core error to the Arabic string the host shows. The
// fallthrough is a generic failure message, never a raw error string.
func UserMessage(err error) string {
	var remote *RemoteHTTPError
	var mismatch *HardwareMismatchError

	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNetworkTimeout):
		return "انتهت مهلة الاتصال بالخادم"
	case errors.Is(err, ErrNetworkUnreachable):
		return "لا يمكن الاتصال بالخادم، تحقق من اتصال الإنترنت"
	case errors.Is(err, ErrRemoteUpdateFailed):
		return "فشل تحديث بيانات الترخيص"
	case errors.As(err, &remote):
		return fmt.Sprintf("خطأ في الخادم (%d)", remote.StatusCode)
	case errors.Is(err, ErrInvalidActivationCode):
		return "رمز التفعيل غير صحيح"
	case errors.As(err, &mismatch):
		return fmt.Sprintf("هذا الترخيص مرتبط بجهاز آخر (%d/4)", mismatch.Matches)
	case errors.Is(err, ErrHardwareMismatch):
		return "هذا الترخيص مرتبط بجهاز آخر"
	case errors.Is(err, ErrLicenseCorrupt):
		return "ملف الترخيص تالف، يرجى إعادة التفعيل"
	case errors.Is(err, ErrLicenseNotFound):
		return "لا يوجد ترخيص، يرجى تفعيل البرنامج"
	default:
		return "حدث خطأ غير متوقع"
	}
}
