package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestUserMessage tests the error-to-Arabic mapping, including wrapped
// causes
func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "nil",
			err:  nil,
			want: "",
		},
		{
			name: "timeout",
			err:  ErrNetworkTimeout,
			want: "انتهت مهلة الاتصال بالخادم",
		},
		{
			name: "wrapped timeout",
			err:  fmt.Errorf("lookup timed out: %w", ErrNetworkTimeout),
			want: "انتهت مهلة الاتصال بالخادم",
		},
		{
			name: "unreachable",
			err:  ErrNetworkUnreachable,
			want: "لا يمكن الاتصال بالخادم، تحقق من اتصال الإنترنت",
		},
		{
			name: "server error carries status",
			err:  NewRemoteHTTPError(503, "lookup"),
			want: "خطأ في الخادم (503)",
		},
		{
			name: "update failure wins over its http cause",
			err:  fmt.Errorf("%w: %w", ErrRemoteUpdateFailed, NewRemoteHTTPError(500, "update")),
			want: "فشل تحديث بيانات الترخيص",
		},
		{
			name: "invalid code",
			err:  ErrInvalidActivationCode,
			want: "رمز التفعيل غير صحيح",
		},
		{
			name: "mismatch carries match count",
			err:  &HardwareMismatchError{Matches: 1},
			want: "هذا الترخيص مرتبط بجهاز آخر (1/4)",
		},
		{
			name: "no license",
			err:  ErrLicenseNotFound,
			want: "لا يوجد ترخيص، يرجى تفعيل البرنامج",
		},
		{
			name: "unknown error stays generic",
			err:  errors.New("disk on fire"),
			want: "حدث خطأ غير متوقع",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UserMessage(tt.err))
		})
	}
}

// TestHardwareMismatchUnwrap tests errors.Is through the wrapper
func TestHardwareMismatchUnwrap(t *testing.T) {
	err := &HardwareMismatchError{Matches: 2}
	assert.ErrorIs(t, err, ErrHardwareMismatch)
}
