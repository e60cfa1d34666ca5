package api

import (
	"context"

	"sentinel/internal/domain/entity"
	"sentinel/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type mockAuthUsecase struct {
	mock.Mock
}

func (m *mockAuthUsecase) Register(ctx context.Context, input *usecase.RegisterInput) (*usecase.AuthOutput, error) {
	args := m.Called(ctx, input)
	out, _ := args.Get(0).(*usecase.AuthOutput)

	return out, args.Error(1)
}

func (m *mockAuthUsecase) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.AuthOutput, error) {
	args := m.Called(ctx, input)
	out, _ := args.Get(0).(*usecase.AuthOutput)

	return out, args.Error(1)
}

func (m *mockAuthUsecase) RefreshAccessToken(ctx context.Context, input *usecase.RefreshTokenInput) (*usecase.RefreshTokenOutput, error) {
	args := m.Called(ctx, input)
	out, _ := args.Get(0).(*usecase.RefreshTokenOutput)

	return out, args.Error(1)
}

func (m *mockAuthUsecase) Logout(ctx context.Context, input *usecase.LogoutInput) (bool, error) {
	args := m.Called(ctx, input)

	return args.Bool(0), args.Error(1)
}

func (m *mockAuthUsecase) ForgotPassword(ctx context.Context, input *usecase.ForgotPasswordInput) (*usecase.MessageOutput, error) {
	args := m.Called(ctx, input)
	out, _ := args.Get(0).(*usecase.MessageOutput)

	return out, args.Error(1)
}

func (m *mockAuthUsecase) ResetPassword(ctx context.Context, input *usecase.ResetPasswordInput) (*usecase.MessageOutput, error) {
	args := m.Called(ctx, input)
	out, _ := args.Get(0).(*usecase.MessageOutput)

	return out, args.Error(1)
}

func (m *mockAuthUsecase) VerifyResetToken(ctx context.Context, token string) (*usecase.VerifyResetTokenOutput, error) {
	args := m.Called(ctx, token)
	out, _ := args.Get(0).(*usecase.VerifyResetTokenOutput)

	return out, args.Error(1)
}

func (m *mockAuthUsecase) SendVerificationEmail(ctx context.Context, userID uuid.UUID) (*usecase.MessageOutput, error) {
	args := m.Called(ctx, userID)
	out, _ := args.Get(0).(*usecase.MessageOutput)

	return out, args.Error(1)
}

func (m *mockAuthUsecase) VerifyEmail(ctx context.Context, token string) (*usecase.VerifyEmailOutput, error) {
	args := m.Called(ctx, token)
	out, _ := args.Get(0).(*usecase.VerifyEmailOutput)

	return out, args.Error(1)
}

func (m *mockAuthUsecase) ResendVerificationEmail(ctx context.Context, input *usecase.ResendVerificationInput) (*usecase.MessageOutput, error) {
	args := m.Called(ctx, input)
	out, _ := args.Get(0).(*usecase.MessageOutput)

	return out, args.Error(1)
}

func (m *mockAuthUsecase) GetCurrentUser(ctx context.Context, accessToken string) (*entity.User, error) {
	args := m.Called(ctx, accessToken)
	out, _ := args.Get(0).(*entity.User)

	return out, args.Error(1)
}

type mockAccountUsecase struct {
	mock.Mock
}

func (m *mockAccountUsecase) GetUser(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	args := m.Called(ctx, userID)
	out, _ := args.Get(0).(*entity.User)

	return out, args.Error(1)
}

func (m *mockAccountUsecase) ChangePassword(ctx context.Context, input *usecase.ChangePasswordInput) error {
	return m.Called(ctx, input).Error(0)
}

func (m *mockAccountUsecase) ChangeEmail(ctx context.Context, input *usecase.ChangeEmailInput) (*entity.User, error) {
	args := m.Called(ctx, input)
	out, _ := args.Get(0).(*entity.User)

	return out, args.Error(1)
}

type mockSessionUsecase struct {
	mock.Mock
}

func (m *mockSessionUsecase) ListSessions(ctx context.Context, userID uuid.UUID) ([]*entity.RefreshToken, error) {
	args := m.Called(ctx, userID)
	out, _ := args.Get(0).([]*entity.RefreshToken)

	return out, args.Error(1)
}

func (m *mockSessionUsecase) RevokeSession(ctx context.Context, userID, sessionID uuid.UUID) error {
	return m.Called(ctx, userID, sessionID).Error(0)
}

func (m *mockSessionUsecase) RevokeAllSessions(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)

	return args.Get(0).(int64), args.Error(1)
}
