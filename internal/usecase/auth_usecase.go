package usecase

import (
	"context"
	"net/http"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

// usecaseに渡す部品（mainで実装をDIする）

type IDGenerator interface {
	NewID() string
}

type Clock interface {
	Now() time.Time
}

type PasswordHasher interface {
	Hash(plain string) (string, error)
}

type PasswordVerifier interface {
	Verify(hash string, plain string) bool
}

type TokenIssuer interface {
	Issue(userID string, now time.Time) (token string, expiresAt time.Time, err error)
}

// 入力検証（実装はvalidatorパッケージ）。
// ネットワーク呼び出しの前に形式エラーを弾く。
type AuthValidator interface {
	ValidateRegister(ctx context.Context, email string, password string) error
	ValidateLogin(ctx context.Context, email string, password string) error
}

type AuthUsecase struct {
	users     repo.UserRepository
	validator AuthValidator
	hasher    PasswordHasher
	verifier  PasswordVerifier
	issuer    TokenIssuer
	idGen     IDGenerator
	clock     Clock
}

// DI
func NewAuthUsecase(
	users repo.UserRepository,
	validator AuthValidator,
	hasher PasswordHasher,
	verifier PasswordVerifier,
	issuer TokenIssuer,
	idGen IDGenerator,
	clock Clock,
) *AuthUsecase {
	return &AuthUsecase{
		users:     users,
		validator: validator,
		hasher:    hasher,
		verifier:  verifier,
		issuer:    issuer,
		idGen:     idGen,
		clock:     clock,
	}
}

type RegisterInput struct {
	Email    string
	Password string
}

type RegisterOutput struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

type LoginInput struct {
	Email    string
	Password string
}

type LoginOutput struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	UserID      string    `json:"user_id"`
	Email       string    `json:"email"`
}

// 会員登録
func (u *AuthUsecase) Register(ctx context.Context, in RegisterInput) (RegisterOutput, error) {
	if err := u.validator.ValidateRegister(ctx, in.Email, in.Password); err != nil {
		return RegisterOutput{}, NewHTTPError(http.StatusBadRequest, "validation error")
	}

	//重複チェック
	if existing, err := u.users.FindByEmail(ctx, in.Email); err == nil && existing != nil {
		return RegisterOutput{}, NewHTTPError(http.StatusConflict, "email already used")
	} else if err != nil && err != repo.ErrUserNotFound {
		return RegisterOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	hash, err := u.hasher.Hash(in.Password)
	if err != nil {
		return RegisterOutput{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	now := u.clock.Now()
	user := &model.User{
		ID:           u.idGen.NewID(),
		Email:        in.Email,
		PasswordHash: hash,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := u.users.Create(ctx, user); err != nil {
		return RegisterOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return RegisterOutput{UserID: user.ID, Email: user.Email}, nil
}

// ログイン。成功でアクセストークンを返す
func (u *AuthUsecase) Login(ctx context.Context, in LoginInput) (LoginOutput, error) {
	if err := u.validator.ValidateLogin(ctx, in.Email, in.Password); err != nil {
		return LoginOutput{}, NewHTTPError(http.StatusBadRequest, "validation error")
	}

	user, err := u.users.FindByEmail(ctx, in.Email)
	if err == repo.ErrUserNotFound {
		//存在の有無は漏らさない
		return LoginOutput{}, NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}
	if err != nil {
		return LoginOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !user.IsActive {
		return LoginOutput{}, NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	if !u.verifier.Verify(user.PasswordHash, in.Password) {
		return LoginOutput{}, NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	now := u.clock.Now()
	token, expiresAt, err := u.issuer.Issue(user.ID, now)
	if err != nil {
		return LoginOutput{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	//最終ログイン更新。失敗してもログインは成立させる
	user.LastLoginAt = &now
	user.UpdatedAt = now
	_ = u.users.Update(ctx, user)

	return LoginOutput{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		UserID:      user.ID,
		Email:       user.Email,
	}, nil
}

// ログアウト。トークンはステートレスなのでサーバ側に消す物は無い
func (u *AuthUsecase) Logout(ctx context.Context) error {
	return nil
}
