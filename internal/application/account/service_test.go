package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/go-accounts-api/internal/application/verification"
	"github.com/go-accounts-api/internal/domain"
	"github.com/go-accounts-api/internal/infrastructure/memory"
	"github.com/go-accounts-api/internal/pkg/id"
	"github.com/go-accounts-api/internal/pkg/password"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- mocks ---

type mockAccountStore struct{ mock.Mock }

func (m *mockAccountStore) Create(ctx context.Context, a *domain.Account) error {
	return m.Called(ctx, a).Error(0)
}
func (m *mockAccountStore) Get(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if a, _ := args.Get(0).(*domain.Account); a != nil {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAccountStore) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	args := m.Called(ctx, email)
	if a, _ := args.Get(0).(*domain.Account); a != nil {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAccountStore) ListNames(ctx context.Context) ([]domain.AccountName, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.AccountName), args.Error(1)
}
func (m *mockAccountStore) Update(ctx context.Context, accountID string, updates map[string]interface{}) error {
	return m.Called(ctx, accountID, updates).Error(0)
}
func (m *mockAccountStore) Delete(ctx context.Context, accountID string) error {
	return m.Called(ctx, accountID).Error(0)
}

type mockOTPDiscarder struct{ mock.Mock }

func (m *mockOTPDiscarder) Discard(ctx context.Context, accountID string) error {
	return m.Called(ctx, accountID).Error(0)
}

type mockVerifier struct{ mock.Mock }

func (m *mockVerifier) RequestVerification(ctx context.Context, accountID string) (*verification.DispatchResult, error) {
	args := m.Called(ctx, accountID)
	res, _ := args.Get(0).(*verification.DispatchResult)
	return res, args.Error(1)
}

// --- helpers ---

var hasher = password.NewHasher(bcrypt.MinCost)

func validRegister() domain.RegisterRequest {
	return domain.RegisterRequest{
		Name:     "Ann",
		Email:    "ann@x.io",
		Password: "pw",
		Phone:    "+15550100",
		Address:  "1 Main St",
		Gender:   domain.GenderFemale,
		Hobbies:  []string{domain.HobbyCoding},
	}
}

func newMemService() (Service, *memory.AccountStore) {
	store := memory.NewAccountStore()
	return NewService(ServiceDeps{AccountRepo: store, Hasher: hasher}), store
}

func strPtr(s string) *string { return &s }

// --- Register ---

func TestRegister_CreatesUnverifiedAccount(t *testing.T) {
	svc, _ := newMemService()
	req := validRegister()
	req.Email = "  Ann@X.io "
	req.Hobbies = []string{domain.HobbyCoding, domain.HobbyReading, domain.HobbyCoding}

	a, err := svc.Register(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, id.Valid(a.AccountID))
	assert.Equal(t, "ann@x.io", a.Email)
	assert.False(t, a.EmailVerified)
	assert.False(t, a.PhoneVerified)
	assert.Equal(t, []string{domain.HobbyCoding, domain.HobbyReading}, a.Hobbies)
	assert.NotEqual(t, "pw", a.PasswordHash)
	assert.True(t, hasher.Verify("pw", a.PasswordHash))
}

func TestRegister_DuplicateEmailConflictKeepsFirst(t *testing.T) {
	svc, _ := newMemService()
	first, err := svc.Register(context.Background(), validRegister())
	require.NoError(t, err)

	dup := validRegister()
	dup.Name = "Impostor"
	dup.Email = "ANN@x.io"
	_, err = svc.Register(context.Background(), dup)
	assert.ErrorIs(t, err, domain.ErrConflict)

	got, err := svc.FindByEmail(context.Background(), "ann@x.io")
	require.NoError(t, err)
	assert.Equal(t, first.AccountID, got.AccountID)
	assert.Equal(t, "Ann", got.Name)
}

func TestRegister_ValidationFailures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.RegisterRequest)
		msg    string
	}{
		{"missing name", func(r *domain.RegisterRequest) { r.Name = "" }, "Name is required"},
		{"bad email", func(r *domain.RegisterRequest) { r.Email = "ann@x" }, "please enter a correct email"},
		{"bad gender", func(r *domain.RegisterRequest) { r.Gender = "Robot" }, "Gender must be one of"},
		{"bad hobby", func(r *domain.RegisterRequest) { r.Hobbies = []string{"Skydiving"} }, "must be one of"},
		{"no hobbies", func(r *domain.RegisterRequest) { r.Hobbies = nil }, "Hobbies is required"},
		{"password over 72 bytes", func(r *domain.RegisterRequest) { r.Password = strings.Repeat("é", 40) }, "Password must be at most 72 bytes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &mockAccountStore{}
			svc := NewService(ServiceDeps{AccountRepo: store, Hasher: hasher})
			req := validRegister()
			tt.mutate(&req)

			_, err := svc.Register(context.Background(), req)
			assert.ErrorIs(t, err, domain.ErrBadRequest)
			assert.ErrorContains(t, err, tt.msg)
			store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestRegister_AutoVerifyFailureDoesNotFail(t *testing.T) {
	store := memory.NewAccountStore()
	v := &mockVerifier{}
	v.On("RequestVerification", mock.Anything, mock.AnythingOfType("string")).
		Return(nil, fmt.Errorf("smtp: %w", domain.ErrDelivery))
	svc := NewService(ServiceDeps{AccountRepo: store, Hasher: hasher, Verifier: v, AutoVerify: true})

	a, err := svc.Register(context.Background(), validRegister())
	require.NoError(t, err)
	v.AssertCalled(t, "RequestVerification", mock.Anything, a.AccountID)
}

func TestRegister_AutoVerifyDisabled(t *testing.T) {
	v := &mockVerifier{}
	svc := NewService(ServiceDeps{AccountRepo: memory.NewAccountStore(), Hasher: hasher, Verifier: v})

	_, err := svc.Register(context.Background(), validRegister())
	require.NoError(t, err)
	v.AssertNotCalled(t, "RequestVerification", mock.Anything, mock.Anything)
}

// --- Get / List ---

func TestGet_InvalidID(t *testing.T) {
	store := &mockAccountStore{}
	svc := NewService(ServiceDeps{AccountRepo: store, Hasher: hasher})
	_, err := svc.Get(context.Background(), "123")
	assert.ErrorIs(t, err, domain.ErrBadRequest)
	store.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestList_NamesOnly(t *testing.T) {
	svc, _ := newMemService()
	a, err := svc.Register(context.Background(), validRegister())
	require.NoError(t, err)

	names, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.AccountName{{AccountID: a.AccountID, Name: "Ann"}}, names)
}

// --- Update ---

func TestUpdate_InvalidIDNeverTouchesStore(t *testing.T) {
	store := &mockAccountStore{}
	svc := NewService(ServiceDeps{AccountRepo: store, Hasher: hasher})

	_, err := svc.Update(context.Background(), "not-a-ulid", domain.UpdateAccountRequest{Name: strPtr("x")})
	assert.ErrorIs(t, err, domain.ErrBadRequest)
	store.AssertExpectations(t)
}

func TestUpdate_OnlySuppliedFields(t *testing.T) {
	svc, store := newMemService()
	a, err := svc.Register(context.Background(), validRegister())
	require.NoError(t, err)
	require.NoError(t, store.Update(context.Background(), a.AccountID, map[string]interface{}{domain.FieldEmailVerified: true}))

	got, err := svc.Update(context.Background(), a.AccountID, domain.UpdateAccountRequest{
		Address: strPtr("2 Side St"),
		Hobbies: []string{domain.HobbyTravelling, domain.HobbyTravelling},
	})
	require.NoError(t, err)
	assert.Equal(t, "2 Side St", got.Address)
	assert.Equal(t, "Ann", got.Name)
	assert.Equal(t, []string{domain.HobbyTravelling}, got.Hobbies)
	assert.True(t, got.EmailVerified)
}

func TestUpdate_PasswordIsRehashed(t *testing.T) {
	svc, store := newMemService()
	a, err := svc.Register(context.Background(), validRegister())
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), a.AccountID, domain.UpdateAccountRequest{Password: strPtr("new-pw")})
	require.NoError(t, err)

	stored, err := store.Get(context.Background(), a.AccountID)
	require.NoError(t, err)
	assert.True(t, hasher.Verify("new-pw", stored.PasswordHash))
	assert.False(t, hasher.Verify("pw", stored.PasswordHash))
}

func TestRegister_PasswordAtByteLimit(t *testing.T) {
	svc, _ := newMemService()
	req := validRegister()
	req.Password = strings.Repeat("é", 36)

	a, err := svc.Register(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, hasher.Verify(req.Password, a.PasswordHash))
}

func TestUpdate_MultibytePasswordOver72BytesIsBadRequest(t *testing.T) {
	svc, store := newMemService()
	a, err := svc.Register(context.Background(), validRegister())
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), a.AccountID, domain.UpdateAccountRequest{Password: strPtr(strings.Repeat("é", 40))})
	assert.ErrorIs(t, err, domain.ErrBadRequest)
	assert.ErrorContains(t, err, "Password must be at most 72 bytes")

	stored, err := store.Get(context.Background(), a.AccountID)
	require.NoError(t, err)
	assert.True(t, hasher.Verify("pw", stored.PasswordHash))
}

func TestUpdate_EmailTakenIsConflict(t *testing.T) {
	svc, _ := newMemService()
	a, err := svc.Register(context.Background(), validRegister())
	require.NoError(t, err)
	other := validRegister()
	other.Email = "bob@x.io"
	_, err = svc.Register(context.Background(), other)
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), a.AccountID, domain.UpdateAccountRequest{Email: strPtr(" BOB@x.io")})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestUpdate_InvalidEmailOrEnum(t *testing.T) {
	svc, _ := newMemService()
	a, err := svc.Register(context.Background(), validRegister())
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), a.AccountID, domain.UpdateAccountRequest{Email: strPtr("nope")})
	assert.ErrorIs(t, err, domain.ErrBadRequest)
	_, err = svc.Update(context.Background(), a.AccountID, domain.UpdateAccountRequest{Gender: strPtr("Robot")})
	assert.ErrorIs(t, err, domain.ErrBadRequest)
}

func TestUpdate_Missing(t *testing.T) {
	svc, _ := newMemService()
	_, err := svc.Update(context.Background(), id.New(), domain.UpdateAccountRequest{Name: strPtr("x")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// --- Delete ---

func TestDelete_InvalidID(t *testing.T) {
	svc, _ := newMemService()
	assert.ErrorIs(t, svc.Delete(context.Background(), "abc"), domain.ErrBadRequest)
}

func TestDelete_Missing(t *testing.T) {
	svc, _ := newMemService()
	assert.ErrorIs(t, svc.Delete(context.Background(), id.New()), domain.ErrNotFound)
}

func TestDelete_DiscardsPendingOTP(t *testing.T) {
	store := memory.NewAccountStore()
	otps := &mockOTPDiscarder{}
	svc := NewService(ServiceDeps{AccountRepo: store, Hasher: hasher, OTPs: otps})
	a, err := svc.Register(context.Background(), validRegister())
	require.NoError(t, err)
	otps.On("Discard", mock.Anything, a.AccountID).Return(errors.New("redis down"))

	require.NoError(t, svc.Delete(context.Background(), a.AccountID))
	otps.AssertExpectations(t)
	_, err = store.Get(context.Background(), a.AccountID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
