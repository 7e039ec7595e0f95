package identity

import (
	"context"
	"testing"
	"time"

	"github.com/albazaar/storefront/internal/domain/identity"
	"github.com/albazaar/storefront/internal/domain/integration"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newLoginService(f *fixture) *LoginService {
	svc := NewLoginService(f.backend, f.sessions, nil, zap.NewNop())
	svc.now = f.clock.Now
	return svc
}

// atOTPStep requests a code for a fresh session
func atOTPStep(t *testing.T, f *fixture, svc *LoginService) *identity.Session {
	t.Helper()
	session := f.newSession(t).Session
	f.backend.On("RequestOTP", mock.Anything, "01012345678").Return(nil).Once()
	_, err := svc.RequestOTP(context.Background(), session, "010-1234-5678")
	require.NoError(t, err)
	return session
}

func TestLoginService_RequestOTP(t *testing.T) {
	f := newFixture(t, true)
	svc := newLoginService(f)

	session := atOTPStep(t, f, svc)

	view := svc.Status(session)
	assert.Equal(t, identity.LoginStepOTP, view.Step)
	assert.Equal(t, "01012345678", view.Phone)
	assert.Equal(t, identity.OTPCountdownSeconds, view.CountdownRemaining)
	assert.False(t, view.CanRequestOTP)
	assert.False(t, view.LoggedIn)
	assert.Equal(t, identity.LoginStepOTP, f.stored(t, session.ID).Login.Step)
	f.backend.AssertExpectations(t)
}

func TestLoginService_RequestOTP_Failures(t *testing.T) {
	tests := []struct {
		name       string
		phone      string
		backendErr error
		wantErr    error
		wantMsg    string
	}{
		{
			name:    "too short",
			phone:   "010-12",
			wantErr: identity.ErrInvalidPhone,
			wantMsg: identity.ErrInvalidPhone.Message,
		},
		{
			name:       "falsy backend answer",
			phone:      "01012345678",
			backendErr: integration.ErrBackendRejected,
			wantErr:    identity.ErrOTPNotSent,
			wantMsg:    "Failed to send OTP. Please try again.",
		},
		{
			name:       "transport error",
			phone:      "01012345678",
			backendErr: integration.ErrBackendUnavailable,
			wantErr:    identity.ErrOTPRequestFailed,
			wantMsg:    "An error occurred while sending OTP. Please try again.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, false)
			svc := newLoginService(f)
			session := f.newSession(t).Session
			if tt.backendErr != nil {
				f.backend.On("RequestOTP", mock.Anything, tt.phone).Return(tt.backendErr).Once()
			}

			view, err := svc.RequestOTP(context.Background(), session, tt.phone)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, identity.LoginStepPhone, view.Step)
			assert.Equal(t, tt.wantMsg, view.Error)
			assert.Equal(t, tt.wantMsg, f.stored(t, session.ID).Login.Error)
			f.backend.AssertExpectations(t)
		})
	}
}

func TestLoginService_RequestOTP_NoResendBeforeCountdownEnds(t *testing.T) {
	f := newFixture(t, false)
	svc := newLoginService(f)
	session := atOTPStep(t, f, svc)

	f.clock.Advance(119 * time.Second)
	view, err := svc.RequestOTP(context.Background(), session, "01012345678")
	assert.ErrorIs(t, err, identity.ErrOTPCooldown)
	assert.Equal(t, 1, view.CountdownRemaining)

	f.clock.Advance(time.Second)
	f.backend.On("RequestOTP", mock.Anything, "01099998888").Return(nil).Once()
	view, err = svc.RequestOTP(context.Background(), session, "010 9999 8888")
	require.NoError(t, err)
	assert.Equal(t, identity.OTPCountdownSeconds, view.CountdownRemaining)
	assert.Equal(t, "01099998888", view.Phone)
	f.backend.AssertExpectations(t)
}

func TestLoginService_KeyEvent(t *testing.T) {
	f := newFixture(t, false)
	svc := newLoginService(f)

	t.Run("rejected before a code was requested", func(t *testing.T) {
		session := f.newSession(t).Session
		_, err := svc.KeyEvent(context.Background(), session, KeyInput{Index: 0, Key: "1"})
		assert.ErrorIs(t, err, identity.ErrInvalidLoginStep)
	})

	t.Run("typing and backspace", func(t *testing.T) {
		session := atOTPStep(t, f, svc)
		ctx := context.Background()

		view, err := svc.KeyEvent(ctx, session, KeyInput{Index: 0, Key: "4"})
		require.NoError(t, err)
		assert.Equal(t, "4", view.OTP[0])
		assert.Equal(t, 1, view.Focus)

		view, err = svc.KeyEvent(ctx, session, KeyInput{Index: 1, Key: "x"})
		require.NoError(t, err)
		assert.Equal(t, "", view.OTP[1])

		view, err = svc.KeyEvent(ctx, session, KeyInput{Index: 1, Key: BackspaceKey})
		require.NoError(t, err)
		assert.Equal(t, 0, view.Focus)

		view, err = svc.KeyEvent(ctx, session, KeyInput{Index: 0, Key: BackspaceKey})
		require.NoError(t, err)
		assert.Equal(t, "", view.OTP[0])
		assert.Equal(t, 0, view.Focus)

		assert.Equal(t, [6]string{}, f.stored(t, session.ID).Login.OTP.Digits)
	})
}

func TestLoginService_Verify_Failures(t *testing.T) {
	t.Run("incomplete code", func(t *testing.T) {
		f := newFixture(t, false)
		svc := newLoginService(f)
		session := atOTPStep(t, f, svc)

		_, err := svc.Verify(context.Background(), session, "")
		assert.ErrorIs(t, err, identity.ErrOTPIncomplete)
		f.backend.AssertNotCalled(t, "VerifyOTP", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("not activated", func(t *testing.T) {
		f := newFixture(t, false)
		svc := newLoginService(f)
		session := atOTPStep(t, f, svc)
		f.backend.On("VerifyOTP", mock.Anything, "01012345678", "123456").
			Return(integration.Verification{Activated: false}, nil).Once()

		view, err := svc.Verify(context.Background(), session, "123456")
		assert.ErrorIs(t, err, identity.ErrOTPRejected)
		assert.Equal(t, identity.LoginStepOTP, view.Step)
		assert.Equal(t, "Invalid OTP. Please try again.", view.Error)
		assert.False(t, view.LoggedIn)
	})

	t.Run("backend error", func(t *testing.T) {
		f := newFixture(t, false)
		svc := newLoginService(f)
		session := atOTPStep(t, f, svc)
		f.backend.On("VerifyOTP", mock.Anything, "01012345678", "123456").
			Return(integration.Verification{}, integration.ErrBackendUnavailable).Once()

		view, err := svc.Verify(context.Background(), session, "123456")
		assert.ErrorIs(t, err, identity.ErrOTPVerifyFailed)
		assert.Equal(t, "An error occurred during OTP verification. Please try again.", view.Error)
	})

	t.Run("wrong step", func(t *testing.T) {
		f := newFixture(t, false)
		svc := newLoginService(f)
		session := f.newSession(t).Session

		_, err := svc.Verify(context.Background(), session, "123456")
		assert.ErrorIs(t, err, identity.ErrInvalidLoginStep)
	})
}

func TestLoginService_Verify_BlankAddressAsksForOne(t *testing.T) {
	f := newFixture(t, true)
	svc := newLoginService(f)
	session := atOTPStep(t, f, svc)
	f.backend.On("VerifyOTP", mock.Anything, "01012345678", "123456").
		Return(integration.Verification{Activated: true, Token: "tok", Address: "   "}, nil).Once()

	view, err := svc.Verify(context.Background(), session, "123456")
	require.NoError(t, err)

	assert.True(t, view.LoggedIn)
	assert.Equal(t, identity.LoginStepAddress, view.Step)
	assert.Empty(t, f.events.ofType(identity.EventTypeLoginCompleted))
}

func TestLoginService_Verify_KnownAddressFinishesLogin(t *testing.T) {
	f := newFixture(t, true)
	svc := newLoginService(f)
	session := atOTPStep(t, f, svc)

	for i, d := range "654321" {
		_, err := svc.KeyEvent(context.Background(), session, KeyInput{Index: i, Key: string(d)})
		require.NoError(t, err)
	}
	f.backend.On("VerifyOTP", mock.Anything, "01012345678", "654321").
		Return(integration.Verification{Activated: true, Token: "tok", Address: "Seoul"}, nil).Once()

	view, err := svc.Verify(context.Background(), session, "")
	require.NoError(t, err)

	assert.True(t, view.LoggedIn)
	assert.Equal(t, identity.LoginStepDone, view.Step)
	stored := f.stored(t, session.ID)
	assert.Equal(t, "tok", stored.BackendToken)
	assert.True(t, stored.LoggedIn)

	events := f.events.ofType(identity.EventTypeLoginCompleted)
	require.Len(t, events, 1)
	assert.False(t, events[0].(*identity.LoginCompletedEvent).AddressCapture)
}

func TestLoginService_AddressStep(t *testing.T) {
	f := newFixture(t, true)
	svc := newLoginService(f)
	session := atOTPStep(t, f, svc)
	ctx := context.Background()

	f.backend.On("VerifyOTP", mock.Anything, "01012345678", "111111").
		Return(integration.Verification{Activated: true, Token: "tok"}, nil).Once()
	view, err := svc.Verify(ctx, session, "111111")
	require.NoError(t, err)
	require.Equal(t, identity.LoginStepAddress, view.Step)
	assert.True(t, view.LoggedIn)
	assert.Empty(t, f.events.ofType(identity.EventTypeLoginCompleted))

	_, err = svc.SubmitAddress(ctx, session, identity.AddressForm{ReceiverName: "Amina", Address: "Seoul"})
	assert.ErrorIs(t, err, identity.ErrAddressIncomplete)

	cred := integration.Credential{Phone: "01012345678", Token: "tok"}
	update := integration.AddressUpdate{ReceiverName: "Amina", Address: "Seoul", DetailedAddress: "101-202"}
	f.backend.On("UpdateAddress", mock.Anything, cred, update).Return(integration.ErrBackendRequestFailed).Once()
	view, err = svc.SubmitAddress(ctx, session, identity.AddressForm{ReceiverName: "Amina", Address: "Seoul", DetailAddress: "101-202"})
	assert.ErrorIs(t, err, identity.ErrAddressUpdateFailed)
	assert.Equal(t, identity.LoginStepAddress, view.Step)

	f.backend.On("UpdateAddress", mock.Anything, cred, update).Return(nil).Once()
	view, err = svc.SubmitAddress(ctx, session, identity.AddressForm{ReceiverName: "Amina", Address: "Seoul", DetailAddress: "101-202"})
	require.NoError(t, err)
	assert.Equal(t, identity.LoginStepDone, view.Step)
	assert.Empty(t, view.Error)

	events := f.events.ofType(identity.EventTypeLoginCompleted)
	require.Len(t, events, 1)
	assert.True(t, events[0].(*identity.LoginCompletedEvent).AddressCapture)
	f.backend.AssertExpectations(t)
}

func TestLoginService_AddressStep_Unauthorized(t *testing.T) {
	f := newFixture(t, true)
	svc := newLoginService(f)
	session := atOTPStep(t, f, svc)
	ctx := context.Background()

	f.backend.On("VerifyOTP", mock.Anything, mock.Anything, mock.Anything).
		Return(integration.Verification{Activated: true, Token: "tok"}, nil).Once()
	_, err := svc.Verify(ctx, session, "111111")
	require.NoError(t, err)

	f.backend.On("UpdateAddress", mock.Anything, mock.Anything, mock.Anything).Return(integration.ErrBackendUnauthorized).Once()
	_, err = svc.SubmitAddress(ctx, session, identity.AddressForm{ReceiverName: "A", Address: "B", DetailAddress: "C"})
	assert.ErrorIs(t, err, identity.ErrSessionExpired)
	assert.False(t, f.stored(t, session.ID).LoggedIn)
}

func TestLoginService_Logout(t *testing.T) {
	f := newFixture(t, false)
	svc := newLoginService(f)
	resolved := f.newSession(t)

	require.NoError(t, svc.Logout(context.Background(), resolved))

	_, err := storedSession(f, resolved.Session.ID)
	assert.ErrorIs(t, err, identity.ErrSessionNotFound)
	revoked, err := svc.sessions.blacklist.IsBlacklisted(context.Background(), resolved.Session.ID)
	require.NoError(t, err)
	assert.True(t, revoked)
}
