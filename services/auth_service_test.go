package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Marling1212/ntu-sports-sub001/models"
)

func newAuthFixture() AuthService {
	return NewAuthService(newFakeUserRepo(), nil, "test-secret", time.Hour, testLogger())
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newAuthFixture()
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{
		FirstName: "Mei",
		LastName:  "Lin",
		Email:     "Mei.Lin@Example.com",
		Password:  "correct horse",
		Role:      models.RoleOrganizer,
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Email != "mei.lin@example.com" {
		t.Errorf("email not normalized: %q", user.Email)
	}
	if user.PasswordHash == "correct horse" {
		t.Error("password stored in plain text")
	}

	token, logged, err := svc.Login(ctx, LoginInput{Email: "mei.lin@example.com", Password: "correct horse"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if logged.ID != user.ID {
		t.Errorf("logged in as user %d, want %d", logged.ID, user.ID)
	}

	claims, err := svc.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.UserID != user.ID || claims.Role != models.RoleOrganizer {
		t.Errorf("claims = %+v", claims)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := newAuthFixture()
	ctx := context.Background()

	tests := []struct {
		name  string
		input RegisterInput
		want  error
	}{
		{
			name:  "short password",
			input: RegisterInput{FirstName: "A", Email: "a@example.com", Password: "short"},
			want:  ErrPasswordTooShort,
		},
		{
			name:  "bad email",
			input: RegisterInput{FirstName: "A", Email: "not-an-email", Password: "long enough"},
			want:  ErrValidationFailed,
		},
		{
			name:  "missing first name",
			input: RegisterInput{Email: "a@example.com", Password: "long enough"},
			want:  ErrValidationFailed,
		},
		{
			name:  "unknown role",
			input: RegisterInput{FirstName: "A", Email: "a@example.com", Password: "long enough", Role: "admin"},
			want:  ErrValidationFailed,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Register(ctx, tc.input); !errors.Is(err, tc.want) {
				t.Errorf("got %v, want %v", err, tc.want)
			}
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newAuthFixture()
	ctx := context.Background()
	input := RegisterInput{FirstName: "A", Email: "dup@example.com", Password: "long enough"}

	if _, err := svc.Register(ctx, input); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	if _, err := svc.Register(ctx, input); !errors.Is(err, ErrAuthEmailTaken) {
		t.Errorf("got %v, want ErrAuthEmailTaken", err)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := newAuthFixture()
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{FirstName: "A", Email: "a@example.com", Password: "long enough"}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, _, err := svc.Login(ctx, LoginInput{Email: "a@example.com", Password: "wrong password"}); !errors.Is(err, ErrAuthInvalidCredentials) {
		t.Errorf("wrong password: got %v, want ErrAuthInvalidCredentials", err)
	}
	if _, _, err := svc.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "long enough"}); !errors.Is(err, ErrAuthInvalidCredentials) {
		t.Errorf("unknown email: got %v, want ErrAuthInvalidCredentials", err)
	}
}

func TestParseTokenRejectsForgedToken(t *testing.T) {
	svc := newAuthFixture()
	other := NewAuthService(newFakeUserRepo(), nil, "other-secret", time.Hour, testLogger())

	ctx := context.Background()
	if _, err := svc.Register(ctx, RegisterInput{FirstName: "A", Email: "a@example.com", Password: "long enough"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	token, _, err := svc.Login(ctx, LoginInput{Email: "a@example.com", Password: "long enough"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if _, err := other.ParseToken(token); !errors.Is(err, ErrAuthInvalidCredentials) {
		t.Errorf("foreign-secret token accepted: %v", err)
	}
}
